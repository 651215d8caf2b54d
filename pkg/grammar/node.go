// Package grammar implements the command grammar tree for gramline: typed
// nodes laid out in a single arena, build-time validation, and alias
// resolution that shares subtrees by reference instead of copying them.
//
// A Grammar is built once from declarative Defs (or from the XML loader in
// pkg/xmlgrammar), is immutable afterwards, and may be read concurrently by
// any number of parse runs.
package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

// NodeID is a stable index into the grammar's node arena. Traversal counts,
// history and alias edges all key off NodeID, never off the path used to
// reach a node.
type NodeID int

// NoNode is the null NodeID (the root's parent).
const NoNode NodeID = -1

// Kind discriminates the node variants. Alias and Group exist only in Defs:
// both are dissolved while the grammar is built and never appear in a
// resolved tree.
type Kind int

const (
	KindRouting Kind = iota // plain keyword node
	KindVariable
	KindAction
	KindRoot
	KindAlias
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindRouting:
		return "node"
	case KindVariable:
		return "variable"
	case KindAction:
		return "action"
	case KindRoot:
		return "root"
	case KindAlias:
		return "alias"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Unlimited marks a node that may be traversed any number of times within
// one parse run. (A Def's zero Traversals value means "default", which is a
// single traversal, so unlimited needs its own sentinel.)
const Unlimited = -1

// HelpEntry is one (key, text) help pair.
type HelpEntry struct {
	Key  string
	Text string
}

// HelpFunc lazily produces the ordered help entries for a node.
type HelpFunc func() []HelpEntry

// ParseFunc converts a variable's matched text to its typed value.
type ParseFunc func(token string) (any, error)

// CandidateFunc produces completion candidates for a partial token. The
// returned strings carry no trailing separator; the completion engine
// appends one.
type CandidateFunc func(partial string) []string

// Vars holds the variables collected during one parse run, keyed by the
// variable node's name. A node whose traversal limit is not exactly 1
// accumulates an []any sequence; all others store a scalar.
type Vars map[string]any

// String returns the named variable as a string, or "" if absent.
func (v Vars) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the named variable as an int, or 0 if absent.
func (v Vars) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

// Float returns the named variable as a float64, or 0 if absent.
func (v Vars) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// Bool returns the named variable as a bool, or false if absent.
func (v Vars) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Slice returns the accumulated sequence for a multi-traversal variable.
func (v Vars) Slice(name string) []any {
	s, _ := v[name].([]any)
	return s
}

// Call carries the arguments of one action dispatch.
type Call struct {
	// User is the caller-supplied object, non-nil whenever the action
	// declared NeedsUser.
	User any
	// Vars are the variables collected by the parse run, read-only.
	Vars Vars
}

// ActionFunc is the callback bound to an action node. Errors (and panics)
// propagate to the dispatch caller unchanged.
type ActionFunc func(call *Call) (any, error)

// Node is one resolved grammar node. Nodes are owned by their Grammar and
// must never be mutated after New returns.
type Node struct {
	id     NodeID
	parent NodeID // non-owning back-reference, used for path computation only
	kind   Kind
	name   string

	patternSrc string // "" means "matches end of input only"
	pattern    *regexp.Regexp
	literal    bool // pattern is the escaped form of name

	helpText string
	helpFn   HelpFunc

	limit           int // 0 = unlimited
	matchCandidates bool
	candidates      CandidateFunc

	varName string
	parse   ParseFunc

	callback  ActionFunc
	needsUser bool

	children []NodeID // declared order; alias splices keep the alias's slot
}

// ID returns the node's stable arena index.
func (n *Node) ID() NodeID { return n.id }

// Name returns the node's name, unique among its siblings.
func (n *Node) Name() string { return n.name }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// PatternSource returns the pattern as written; "" for end-of-input nodes.
func (n *Node) PatternSource() string { return n.patternSrc }

// Limit returns the traversal limit (0 = unlimited).
func (n *Node) Limit() int { return n.limit }

// MatchCandidates reports whether input must equal a generated candidate.
func (n *Node) MatchCandidates() bool { return n.matchCandidates }

// CandidateProvider returns the custom candidate provider, or nil.
func (n *Node) CandidateProvider() CandidateFunc { return n.candidates }

// VarName returns the name under which a variable node stores its value.
func (n *Node) VarName() string {
	if n.varName != "" {
		return n.varName
	}
	return n.name
}

// NeedsUser reports whether the action requires a user object.
func (n *Node) NeedsUser() bool { return n.needsUser }

// Callback returns the bound action callback, or nil.
func (n *Node) Callback() ActionFunc { return n.callback }

// Children returns the node's children in declared order. The slice is
// owned by the grammar; callers must not modify it.
func (n *Node) Children() []NodeID { return n.children }

// Parent returns the parent NodeID, or NoNode for the root.
func (n *Node) Parent() NodeID { return n.parent }

// Literal returns the completable literal form of the node and true when
// the node's pattern is just its escaped name.
func (n *Node) Literal() (string, bool) {
	if n.literal {
		return n.name, true
	}
	return "", false
}

// MatchToken matches the node's pattern against input anchored at offset
// at, returning the matched length. Empty-pattern nodes (root, default
// actions) match only at end of input; any other zero-length match is
// likewise only accepted there, which keeps zero-consumption loops out of
// the middle of a parse.
func (n *Node) MatchToken(input string, at int) (int, bool) {
	if n.pattern == nil {
		return 0, at == len(input)
	}
	loc := n.pattern.FindStringIndex(input[at:])
	if loc == nil {
		return 0, false
	}
	if loc[1] == 0 && at != len(input) {
		return 0, false
	}
	return loc[1], true
}

// MatchesEmpty reports whether the node can be entered without consuming
// input. Used by the build-time zero-token cycle check.
func (n *Node) MatchesEmpty() bool {
	if n.pattern == nil {
		return true
	}
	return n.pattern.FindStringIndex("") != nil
}

// ParseValue runs the variable's parse hook on the matched text. Nodes
// without a hook store the raw token.
func (n *Node) ParseValue(token string) (any, error) {
	if n.parse == nil {
		return token, nil
	}
	return n.parse(token)
}

// HelpEntries evaluates the node's help. Literal help yields a single
// entry whose key is the node name (or "<name>" when the node carries a
// custom pattern, and "<eol>" for actions).
func (n *Node) HelpEntries() []HelpEntry {
	if n.helpFn != nil {
		return n.helpFn()
	}
	return []HelpEntry{{Key: n.helpKey(), Text: n.helpText}}
}

func (n *Node) helpKey() string {
	switch {
	case n.kind == KindAction:
		return "<eol>"
	case n.literal:
		return n.name
	default:
		return "<" + n.name + ">"
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("<%s:%s>", n.kind, n.name)
}

// compilePattern anchors src at the start of the scan position. The
// separator that must follow a match is the matcher's concern, not the
// pattern's.
func compilePattern(src string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + src + `)`)
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func anonymousName(i int) string {
	return fmt.Sprintf("__anon_%d", i)
}

func isAnonymous(name string) bool {
	return strings.HasPrefix(name, "__anon_")
}
