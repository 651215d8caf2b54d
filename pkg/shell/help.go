package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gramline/gramline/pkg/grammar"
)

// styles holds the lipgloss styles for one session. With color disabled
// every style is the zero style, which renders text unchanged.
type styles struct {
	key   lipgloss.Style
	err   lipgloss.Style
	faint lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{}
	}
	return styles{
		key:   lipgloss.NewStyle().Bold(true),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		faint: lipgloss.NewStyle().Faint(true),
	}
}

// writeHelp prints aligned (key, text) help pairs in their given order.
// The whole block is built as one string and written in a single call so
// readline's wrapped writer refreshes the prompt only once.
func writeHelp(w io.Writer, st styles, entries []grammar.HelpEntry) {
	if len(entries) == 0 {
		io.WriteString(w, "  (no further input expected)\n")
		return
	}
	maxWidth := 0
	for _, e := range entries {
		if len(e.Key) > maxWidth {
			maxWidth = len(e.Key)
		}
	}
	var sb strings.Builder
	sb.WriteString("Possible completions:\n")
	for _, e := range entries {
		pad := strings.Repeat(" ", maxWidth-len(e.Key))
		if e.Text != "" {
			fmt.Fprintf(&sb, "  %s%s  %s\n", st.key.Render(e.Key), pad, e.Text)
		} else {
			fmt.Fprintf(&sb, "  %s\n", st.key.Render(e.Key))
		}
	}
	io.WriteString(w, sb.String())
}

// errorAtCursor prints a caret under the offset where parsing stopped,
// followed by the message, mirroring the line above it on the terminal.
func errorAtCursor(w io.Writer, st styles, promptLen, cursor int, msg string) {
	indent := strings.Repeat(" ", promptLen+cursor)
	fmt.Fprintf(w, "%s%s\n", indent, st.err.Render("^ "+msg))
}

// commonPrefix returns the longest shared prefix among the given strings.
func commonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
