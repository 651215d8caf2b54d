package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramline/gramline/pkg/grammar"
)

func TestParseSimpleChain(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("one", "1",
			grammar.NewNode("two", "2")),
		grammar.NewNode("four", "4"),
	)

	ctx := Parse(g, "one two")
	assert.Equal(t, "one two", ctx.Parsed())
	assert.Equal(t, "", ctx.Remaining())
	assert.Equal(t, "two", ctx.Current().Name())

	ctx = Parse(g, "one nope")
	assert.Equal(t, "one ", ctx.Parsed())
	assert.Equal(t, "nope", ctx.Remaining())
	assert.Equal(t, "one", ctx.Current().Name())
}

func TestParsedPlusRemainingIsInput(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("one", "",
			grammar.NewNode("two", "",
				grammar.NewAction("", nil))),
	)
	inputs := []string{
		"", "one", "one two", "one two extra", "garbage",
		"one  two", "one\ttwo", " one", "one two ", "one twox",
	}
	for _, in := range inputs {
		ctx := Parse(g, in)
		require.Equal(t, in, ctx.Parsed()+ctx.Remaining(), "input %q", in)
	}
}

func TestParseDeterministic(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("cmd", "",
			grammar.Int("n", "",
				grammar.NewAction("", nil))),
	)
	a := Parse(g, "cmd 42 tail")
	b := Parse(g, "cmd 42 tail")
	assert.Equal(t, a.Parsed(), b.Parsed())
	assert.Equal(t, a.Remaining(), b.Remaining())
	assert.Equal(t, a.History(), b.History())
	assert.Equal(t, a.Vars(), b.Vars())
}

func TestDeclaredOrderTieBreak(t *testing.T) {
	// Both children match "x"; the first declared wins even though the
	// second is the only one with a viable continuation.
	g := grammar.MustNew(
		grammar.NewVar("first", "", `\w+`, nil),
		grammar.NewVar("second", "", `\w+`, nil,
			grammar.NewNode("go", "")),
	)
	ctx := Parse(g, "x go")
	assert.Equal(t, "first", ctx.Current().Name(),
		"matcher must not revisit the choice after committing to first")
	assert.Equal(t, "go", ctx.Remaining())
}

func TestTraversalLimitBlocksReentry(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("once", "", grammar.NewAlias("/once")),
	)
	ctx := Parse(g, "once once")
	assert.Equal(t, "once ", ctx.Parsed())
	assert.Equal(t, "once", ctx.Remaining(), "second entry must be rejected")

	n, err := g.Find("/once")
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Traversed(n.ID()))
}

func TestUnlimitedTraversals(t *testing.T) {
	g := grammar.MustNew(
		grammar.Def{Kind: grammar.KindRouting, Name: "loop", Traversals: grammar.Unlimited,
			Children: []grammar.Def{grammar.NewAlias("/loop")}},
	)
	n, err := g.Find("/loop")
	require.NoError(t, err)

	ctx := Parse(g, "loop loop loop")
	assert.Equal(t, "", ctx.Remaining())
	assert.Equal(t, 3, ctx.Traversed(n.ID()))
}

func TestMultiTraversalVariableAccumulates(t *testing.T) {
	g := grammar.MustNew(
		grammar.Def{Kind: grammar.KindVariable, Name: "n", Pattern: `\d+`, Traversals: 3,
			Children: []grammar.Def{grammar.NewAlias("/n")}},
	)

	// Entered twice: two-element sequence.
	ctx := Parse(g, "1 2")
	assert.Equal(t, []any{"1", "2"}, ctx.Vars()["n"])

	// Entered once: still a sequence, never a bare scalar.
	ctx = Parse(g, "7")
	assert.Equal(t, []any{"7"}, ctx.Vars()["n"])

	// Fourth entry exceeds the budget.
	ctx = Parse(g, "1 2 3 4")
	assert.Equal(t, "4", ctx.Remaining())
	assert.Len(t, ctx.Vars()["n"], 3)
}

func TestScalarVariable(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewVar("name", "", `\w+`, nil),
	)
	ctx := Parse(g, "hello")
	assert.Equal(t, "hello", ctx.Vars()["name"])
}

func TestVariableParseHookTypes(t *testing.T) {
	called := false
	var got grammar.Vars
	g := grammar.MustNew(
		grammar.Int("number", "",
			grammar.NewAction("", func(call *grammar.Call) (any, error) {
				called = true
				got = call.Vars
				return nil, nil
			})),
	)
	_, _, err := Execute(g, "1234", nil)
	require.NoError(t, err)
	require.True(t, called)
	assert.Equal(t, 1234, got["number"], "callback must see the typed value, not the string")
}

func TestVariableParseErrorHaltsMatching(t *testing.T) {
	g := grammar.MustNew(
		grammar.IPAddr("addr", "",
			grammar.NewAction("", nil)),
	)
	ctx := Parse(g, "999.1.2.3")
	assert.Equal(t, "", ctx.Parsed())
	assert.Equal(t, "999.1.2.3", ctx.Remaining())
	assert.NotContains(t, ctx.Vars(), "addr", "no value may be stored on a failed parse")

	var perr *VariableParseError
	require.ErrorAs(t, ctx.Cause(), &perr)
	assert.Equal(t, "999.1.2.3", perr.Token)
	assert.Equal(t, "/addr", perr.Path)
}

func TestAliasSharesTraversalCount(t *testing.T) {
	// The same node reached directly and through an alias shares one
	// traversal count within a context.
	g := grammar.MustNew(
		grammar.NewNode("a", "",
			grammar.NewNode("x", "")),
		grammar.NewNode("b", "",
			grammar.NewAlias("/a/*")),
	)
	x, err := g.Find("/a/x")
	require.NoError(t, err)

	ctx := Parse(g, "b x")
	assert.Equal(t, "", ctx.Remaining())
	assert.Equal(t, 1, ctx.Traversed(x.ID()))
	assert.Equal(t, x.ID(), ctx.Current().ID(),
		"path through the alias reaches the identical node")

	viaDirect := Parse(g, "a x")
	assert.Equal(t, x.ID(), viaDirect.Current().ID())
}

func TestAliasedTerminal(t *testing.T) {
	// one=(alias /three, two),
	// three at top level.
	g := grammar.MustNew(
		grammar.NewNode("one", "One",
			grammar.NewAlias("/three"),
			grammar.NewNode("two", "Two")),
		grammar.NewNode("three", "Three"),
	)
	three, err := g.Find("/three")
	require.NoError(t, err)

	ctx := Parse(g, "one three")
	assert.Equal(t, "", ctx.Remaining())
	assert.Equal(t, three.ID(), ctx.Current().ID())

	ctx = Parse(g, "one two")
	assert.Equal(t, "two", ctx.Current().Name())
}

func TestMatchCandidatesConstraint(t *testing.T) {
	g := grammar.MustNew(
		grammar.Choice("sig", "", []string{"TERM", "KILL"}),
	)
	ctx := Parse(g, "FOO")
	assert.Equal(t, "FOO", ctx.Remaining(),
		"token outside the candidate set must be rejected despite the pattern")

	ctx = Parse(g, "TERM")
	assert.Equal(t, "", ctx.Remaining())
	assert.Equal(t, "TERM", ctx.Vars()["sig"])
}

func TestActionRequiresEndOfInput(t *testing.T) {
	called := false
	g := grammar.MustNew(
		grammar.NewNode("go", "",
			grammar.NewAction("", func(*grammar.Call) (any, error) {
				called = true
				return nil, nil
			}),
			grammar.NewNode("more", "")),
	)
	// With input left, the action is not a terminal and the sibling
	// keyword wins.
	ctx := Parse(g, "go more")
	assert.Equal(t, "more", ctx.Current().Name())

	// The frontier stays at the parent so help still sees every child;
	// dispatch finds the end-of-input terminal from there.
	ctx = Parse(g, "go")
	assert.Equal(t, "go", ctx.Current().Name())
	_, _, err := Execute(g, "go", nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestConcurrentParsesShareGrammar(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("cmd", "",
			grammar.Int("n", "", grammar.NewAction("", nil))),
	)
	done := make(chan *Context)
	for i := 0; i < 8; i++ {
		go func() { done <- Parse(g, "cmd 7") }()
	}
	for i := 0; i < 8; i++ {
		ctx := <-done
		assert.Equal(t, "", ctx.Remaining())
		assert.Equal(t, 7, ctx.Vars()["n"])
	}
}
