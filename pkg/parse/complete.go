package parse

import (
	"strings"

	"github.com/gramline/gramline/pkg/grammar"
)

// Separator is appended to every completion candidate so it can be
// inserted into a line buffer directly.
const Separator = " "

// Candidates returns the completion candidates at the context's frontier:
// for each eligible child of the current node, the child's provider output
// or its literal form, filtered to those prefixed by partial, in declared
// child order, each with a trailing Separator.
func Candidates(ctx *Context, partial string) []string {
	var out []string
	for _, id := range ctx.Current().Children() {
		child := ctx.g.Node(id)
		if !ctx.eligible(child) {
			continue
		}
		for _, c := range rawCandidates(child, partial) {
			if strings.HasPrefix(c, partial) {
				out = append(out, c+Separator)
			}
		}
	}
	return out
}

// HelpEntries returns the ordered help for the context's frontier, one or
// more (key, text) pairs per eligible child, lazily evaluated for children
// declared with a help provider.
func HelpEntries(ctx *Context) []grammar.HelpEntry {
	var out []grammar.HelpEntry
	for _, id := range ctx.Current().Children() {
		child := ctx.g.Node(id)
		if !ctx.eligible(child) {
			continue
		}
		out = append(out, child.HelpEntries()...)
	}
	return out
}
