package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramline/gramline/pkg/grammar"
)

func TestCandidatesDeclaredOrder(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("term", "t1"),
		grammar.NewNode("test", "t2"),
		grammar.NewNode("other", "o"),
	)
	ctx := Parse(g, "")
	assert.Equal(t, []string{"term ", "test "}, Candidates(ctx, "te"),
		"candidates keep declared child order and carry the separator")
	assert.Equal(t, []string{"term ", "test ", "other "}, Candidates(ctx, ""))
}

func TestCandidatesAtFrontier(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("one", "",
			grammar.NewNode("two", ""),
			grammar.NewNode("three", "")),
		grammar.NewNode("four", ""),
	)
	ctx := Parse(g, "one ")
	assert.Equal(t, []string{"two ", "three "}, Candidates(ctx, ""))
	assert.Equal(t, []string{"three "}, Candidates(ctx, "th"))
}

func TestCandidatesFromProvider(t *testing.T) {
	g := grammar.MustNew(
		grammar.Choice("sig", "", []string{"TERM", "KILL"}),
	)
	ctx := Parse(g, "")
	assert.Equal(t, []string{"TERM ", "KILL "}, Candidates(ctx, ""))
	assert.Equal(t, []string{"KILL "}, Candidates(ctx, "K"))
}

func TestCandidatesSkipExhaustedChildren(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("once", "",
			grammar.NewAlias("/once"),
			grammar.NewNode("done", "")),
	)
	ctx := Parse(g, "once ")
	assert.Equal(t, []string{"done "}, Candidates(ctx, ""),
		"a child whose traversal budget is spent offers no candidates")
}

func TestCandidatesSkipPatternOnlyNodes(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewVar("free", "", `\w+`, nil),
		grammar.NewNode("lit", ""),
	)
	ctx := Parse(g, "")
	assert.Equal(t, []string{"lit "}, Candidates(ctx, ""),
		"a provider-less pattern node has no literal form to offer")
}

func TestHelpEntriesAtFrontier(t *testing.T) {
	g := grammar.MustNew(
		grammar.NewNode("show", "Show things",
			grammar.NewNode("version", "Show the version"),
			grammar.NewVar("file", "A file name", `\S+`, nil),
			grammar.NewAction("Show everything", nil)),
	)
	ctx := Parse(g, "show")
	require.Equal(t, "show", ctx.Current().Name())

	entries := HelpEntries(ctx)
	require.Len(t, entries, 3)
	assert.Equal(t, grammar.HelpEntry{Key: "version", Text: "Show the version"}, entries[0])
	assert.Equal(t, grammar.HelpEntry{Key: "<file>", Text: "A file name"}, entries[1])
	assert.Equal(t, grammar.HelpEntry{Key: "<eol>", Text: "Show everything"}, entries[2])
}

func TestHelpEntriesLazy(t *testing.T) {
	calls := 0
	g := grammar.MustNew(
		grammar.Def{Kind: grammar.KindRouting, Name: "n", HelpFn: func() []grammar.HelpEntry {
			calls++
			return []grammar.HelpEntry{{Key: "a", Text: "1"}, {Key: "b", Text: "2"}}
		}},
	)
	ctx := Parse(g, "")
	require.Equal(t, 0, calls, "help must not be evaluated before it is asked for")
	entries := HelpEntries(ctx)
	assert.Equal(t, 1, calls)
	assert.Len(t, entries, 2)
}
