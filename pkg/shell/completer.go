package shell

import (
	"strings"

	"github.com/gramline/gramline/pkg/parse"
)

// splitLine divides a line buffer into the prefix to parse and the partial
// word being completed. A trailing separator means the last word is
// finished and the partial is empty.
func splitLine(text string) (prefix, partial string) {
	if text == "" || isSeparator(text[len(text)-1]) {
		return text, ""
	}
	i := len(text)
	for i > 0 && !isSeparator(text[i-1]) {
		i--
	}
	return text[:i], text[i:]
}

func isSeparator(b byte) bool {
	return b == ' ' || b == '\t'
}

// completer implements readline.AutoCompleter over the shell's grammar.
type completer struct {
	s *Shell
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	c.s.metrics.completions.Add(1)

	text := string(line[:pos])
	prefix, partial := splitLine(text)

	ctx := parse.Parse(c.s.grammar, prefix)
	if strings.TrimSpace(ctx.Remaining()) != "" {
		return nil, 0 // prefix already invalid, nothing to offer
	}
	cands := parse.Candidates(ctx, partial)
	if len(cands) == 0 {
		return nil, 0
	}

	if len(cands) == 1 {
		return [][]rune{[]rune(cands[0][len(partial):])}, len(partial)
	}

	// Multiple matches: show contextual help above the prompt, then
	// extend the line by the common prefix if there is one.
	c.s.writeFrontierHelp(ctx, partial)
	trimmed := make([]string, len(cands))
	for i, cand := range cands {
		trimmed[i] = strings.TrimSuffix(cand, parse.Separator)
	}
	cp := commonPrefix(trimmed)
	suffix := cp[len(partial):]
	if suffix == "" {
		return nil, 0
	}
	return [][]rune{[]rune(suffix)}, len(partial)
}
