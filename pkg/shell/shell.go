// Package shell runs an interactive readline session over a grammar:
// line editing, tab completion, '?' contextual help, history, and
// dispatch of complete commands through pkg/parse.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/gramline/gramline/pkg/grammar"
	"github.com/gramline/gramline/pkg/parse"
)

// ErrExit terminates the shell loop cleanly when returned by an action
// callback.
var ErrExit = errors.New("exit shell")

// Shell is one interactive session over a grammar.
type Shell struct {
	grammar *grammar.Grammar
	opts    Options
	st      styles
	user    any
	logger  *slog.Logger
	metrics *Metrics
	rl      *readline.Instance
	out     io.Writer
}

// New creates a shell for the given grammar. Defaults: no user object,
// slog's default logger, output to stdout.
func New(g *grammar.Grammar, opts Options) *Shell {
	return &Shell{
		grammar: g,
		opts:    opts,
		st:      newStyles(opts.Color),
		logger:  slog.Default(),
		metrics: NewMetrics(),
		out:     os.Stdout,
	}
}

// SetUser sets the object handed to action callbacks that declared
// NeedsUser.
func (s *Shell) SetUser(user any) { s.user = user }

// SetLogger replaces the session logger.
func (s *Shell) SetLogger(l *slog.Logger) { s.logger = l }

// Metrics returns the session's collector for registration by the
// embedding program.
func (s *Shell) Metrics() *Metrics { return s.metrics }

// Run reads and dispatches lines until EOF, an interrupt at an empty
// prompt, or a callback returning ErrExit.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.opts.Prompt,
		HistoryFile:     s.opts.HistoryFile,
		HistoryLimit:    s.opts.HistoryLimit,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &completer{s: s},
		Listener:        readline.FuncListener(s.helpListener),
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	s.rl = rl
	s.out = rl.Stdout()
	defer func() {
		rl.Close()
		s.rl = nil
		s.out = os.Stdout
	}()

	s.logger.Info("shell session started", "application", s.opts.Application)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.metrics.lines.Add(1)

		if err := s.Dispatch(line); err != nil {
			if err == ErrExit {
				return nil
			}
			fmt.Fprintf(s.out, "%s\n", s.st.err.Render("error: "+err.Error()))
		}
	}
}

// Dispatch executes one line against the grammar, reporting incomplete or
// invalid input at the offset where matching stopped. Callback errors
// other than ErrExit are returned to the caller.
func (s *Shell) Dispatch(line string) error {
	ctx, _, err := parse.Execute(s.grammar, line, s.user)
	if err == nil {
		s.metrics.dispatched.Add(1)
		s.logger.Debug("command dispatched", "input", line)
		return nil
	}

	var inc *parse.IncompleteError
	if errors.As(err, &inc) {
		s.metrics.failures.Add(1)
		s.logger.Debug("parse failure", "input", line, "remaining", inc.Remaining)
		s.printIncomplete(ctx, inc)
		return nil
	}
	if err == ErrExit {
		s.logger.Info("shell session ended")
		return ErrExit
	}
	s.logger.Warn("command failed", "input", line, "error", err)
	return err
}

// printIncomplete mirrors the failing line with a caret at the parse
// frontier, annotated with the tokens that would have been accepted.
func (s *Shell) printIncomplete(ctx *parse.Context, inc *parse.IncompleteError) {
	msg := "incomplete command"
	if inc.Cause != nil {
		msg = inc.Cause.Error()
	} else if strings.TrimSpace(inc.Remaining) != "" {
		msg = "invalid token"
	}

	var keys []string
	for _, e := range parse.HelpEntries(ctx) {
		keys = append(keys, e.Key)
	}
	switch len(keys) {
	case 0:
	case 1:
		msg += fmt.Sprintf(" (expected %s)", keys[0])
	default:
		msg += fmt.Sprintf(" (candidates are %s)", strings.Join(keys, ", "))
	}
	errorAtCursor(s.out, s.st, len(s.opts.Prompt), ctx.Cursor(), msg)
}

// helpListener intercepts '?' and prints contextual help for the line to
// the left of the cursor, keeping the rest of the buffer intact.
func (s *Shell) helpListener(line []rune, pos int, key rune) ([]rune, int, bool) {
	if key != '?' || pos < 1 {
		return line, pos, false
	}
	// Strip the '?' readline already inserted.
	clean := make([]rune, 0, len(line)-1)
	clean = append(clean, line[:pos-1]...)
	clean = append(clean, line[pos:]...)
	text := string(clean[:pos-1])

	s.metrics.helpShown.Add(1)
	fmt.Fprintln(s.out)

	prefix, partial := splitLine(text)
	ctx := parse.Parse(s.grammar, prefix)
	if strings.TrimSpace(ctx.Remaining()) != "" {
		s.printIncomplete(ctx, &parse.IncompleteError{
			Parsed:    ctx.Parsed(),
			Remaining: ctx.Remaining(),
			Cause:     ctx.Cause(),
		})
		return clean, pos - 1, true
	}
	s.writeFrontierHelp(ctx, partial)
	return clean, pos - 1, true
}

// writeFrontierHelp prints the help entries at the context's frontier,
// narrowed to the partial word when one is being typed. Variable entries
// (bracketed keys) always stay visible.
func (s *Shell) writeFrontierHelp(ctx *parse.Context, partial string) {
	entries := parse.HelpEntries(ctx)
	if partial != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.HasPrefix(e.Key, partial) || strings.HasPrefix(e.Key, "<") {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	writeHelp(s.out, s.st, entries)
}
