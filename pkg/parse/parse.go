package parse

import (
	"slices"

	"github.com/gramline/gramline/pkg/grammar"
)

// Parse matches input against the grammar and returns the terminated
// context. It never returns an error: invalid or incomplete input shows up
// as a non-empty Remaining (and possibly a Cause) on the context.
//
// At each step the children of the current node are tried in declared
// order and the first one whose pattern matches the next token wins. The
// choice is committed: if that child's descendants fail to match further
// input the engine does not back up and try a later sibling.
func Parse(g *grammar.Grammar, input string) *Context {
	ctx := newContext(g, input)
	for ctx.step() {
	}
	return ctx
}

// step attempts to advance the context by one node. It reports false when
// no eligible child matches, which terminates the run.
func (c *Context) step() bool {
	cur := c.g.Node(c.current)
	for _, id := range cur.Children() {
		child := c.g.Node(id)
		if !c.eligible(child) {
			continue
		}
		// End-of-input actions are not stepped into: the frontier stays
		// at their parent so completion and help can still see every
		// sibling. Execute enters the terminal when it dispatches.
		if child.Kind() == grammar.KindAction && child.PatternSource() == "" {
			continue
		}
		n, ok := child.MatchToken(c.input, c.cursor)
		if !ok {
			continue
		}
		sep, ok := separator(c.input, c.cursor+n)
		if !ok {
			continue
		}
		token := c.input[c.cursor : c.cursor+n]
		if child.MatchCandidates() && !slices.Contains(rawCandidates(child, token), token) {
			continue
		}

		var value any
		hasValue := child.Kind() == grammar.KindVariable
		if hasValue {
			v, err := child.ParseValue(token)
			if err != nil {
				c.cause = &VariableParseError{
					Path:  c.g.Path(id),
					Token: token,
					Err:   err,
				}
				return false
			}
			value = v
		}
		c.enter(child, value, hasValue)
		c.cursor += n + sep
		return true
	}
	return false
}

// separator returns the length of the whitespace run that must follow a
// token match. End of input counts as a zero-length separator; anything
// else makes the match fail, so a pattern can never stop in the middle of
// a word.
func separator(input string, at int) (int, bool) {
	if at >= len(input) {
		return 0, true
	}
	n := 0
	for at+n < len(input) && isSpace(input[at+n]) {
		n++
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// rawCandidates returns the node's completion candidates for a partial
// token, without the trailing separator: the provider's output when one is
// set, otherwise the node's literal form if it has one.
func rawCandidates(n *grammar.Node, partial string) []string {
	if p := n.CandidateProvider(); p != nil {
		return p(partial)
	}
	if lit, ok := n.Literal(); ok {
		return []string{lit}
	}
	return nil
}
