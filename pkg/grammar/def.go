package grammar

// Def declaratively describes one grammar node before the tree is built.
// Defs are plain values: they can be written as struct literals, produced
// by the helper constructors below, or assembled by a loader such as
// pkg/xmlgrammar.
//
// A zero Traversals means "use the default for the kind" (one traversal);
// Unlimited lifts the limit entirely.
type Def struct {
	Kind    Kind
	Name    string
	Pattern string // anchored regexp; defaults to the escaped Name

	Help   string
	HelpFn HelpFunc // overrides Help when set

	Traversals      int
	MatchCandidates bool
	Candidates      CandidateFunc

	// Variable fields.
	Parse   ParseFunc
	VarName string // storage key; defaults to Name

	// Action fields.
	Callback  ActionFunc
	NeedsUser bool

	// Alias fields.
	Target string // absolute, relative or glob path expression

	// Group fields: overrides applied to every descendant that did not set
	// the attribute explicitly. Application stops at nested groups.
	GroupTraversals int

	Children []Def
}

// NewNode returns a routing node Def matching its own name.
func NewNode(name, help string, children ...Def) Def {
	return Def{Kind: KindRouting, Name: name, Help: help, Children: children}
}

// NewVar returns a variable node Def. An empty pattern falls back to the
// word pattern `\w+`; a nil parse hook stores the raw matched text.
func NewVar(name, help, pattern string, parse ParseFunc, children ...Def) Def {
	return Def{Kind: KindVariable, Name: name, Help: help, Pattern: pattern,
		Parse: parse, Children: children}
}

// NewAction returns a terminal action Def bound to cb. Actions match end of
// input unless given an explicit pattern.
func NewAction(help string, cb ActionFunc) Def {
	return Def{Kind: KindAction, Help: help, Callback: cb}
}

// NewAlias returns an alias Def for the given target path expression.
func NewAlias(target string) Def {
	return Def{Kind: KindAlias, Target: target}
}

// NewGroup returns a transparent grouping Def that applies a traversal
// override to the nodes beneath it.
func NewGroup(traversals int, children ...Def) Def {
	return Def{Kind: KindGroup, GroupTraversals: traversals, Children: children}
}
