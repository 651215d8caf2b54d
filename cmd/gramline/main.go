// gramline is a demo driver for the grammar engine: an interactive shell
// over a built-in or XML-loaded grammar, plus non-interactive grammar
// checking and completion for scripting.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gramline/gramline/pkg/grammar"
	"github.com/gramline/gramline/pkg/logging"
	"github.com/gramline/gramline/pkg/parse"
	"github.com/gramline/gramline/pkg/shell"
	"github.com/gramline/gramline/pkg/xmlgrammar"
)

func main() {
	var (
		optionsFile string
		verbose     bool
	)

	root := &cobra.Command{
		Use:           "gramline",
		Short:         "Grammar-driven interactive CLI engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&optionsFile, "options", "", "TOML shell options file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	shellCmd := &cobra.Command{
		Use:   "shell [grammar.xml]",
		Short: "Run an interactive shell over the demo grammar or an XML grammar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			buf := logging.NewBufferHandler(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}), 512)
			logger := slog.New(buf)

			g, err := loadOrDemo(args, buf)
			if err != nil {
				return err
			}

			opts := shell.DefaultOptions("gramline")
			if optionsFile != "" {
				opts, err = shell.LoadOptions(optionsFile, "gramline")
				if err != nil {
					return err
				}
			}

			sh := shell.New(g, opts)
			sh.SetLogger(logger)
			fmt.Println("gramline - type '?' for contextual help, TAB to complete")
			return sh.Run()
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <grammar.xml>",
		Short: "Validate a grammar file and print its resolved tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := xmlgrammar.LoadFile(args[0], demoRegistry(nil))
			if err != nil {
				return err
			}
			printTree(g)
			fmt.Printf("%d nodes, ok\n", g.Len())
			return nil
		},
	}

	completeCmd := &cobra.Command{
		Use:   "complete <grammar.xml> <line>",
		Short: "Print completion candidates for a partial command line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := xmlgrammar.LoadFile(args[0], demoRegistry(nil))
			if err != nil {
				return err
			}
			prefix, partial := splitLast(args[1])
			ctx := parse.Parse(g, prefix)
			if strings.TrimSpace(ctx.Remaining()) != "" {
				return fmt.Errorf("invalid prefix at %q", ctx.Remaining())
			}
			for _, c := range parse.Candidates(ctx, partial) {
				fmt.Println(strings.TrimSuffix(c, parse.Separator))
			}
			return nil
		},
	}

	root.AddCommand(shellCmd, checkCmd, completeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gramline: %v\n", err)
		os.Exit(1)
	}
}

func loadOrDemo(args []string, buf *logging.BufferHandler) (*grammar.Grammar, error) {
	if len(args) == 1 {
		return xmlgrammar.LoadFile(args[0], demoRegistry(buf))
	}
	return demoGrammar(buf)
}

// printTree renders the resolved grammar with one indented line per node.
// Shared (aliased) nodes print once per reachable path but carry the same
// identity, marked when revisited.
func printTree(g *grammar.Grammar) {
	seen := map[grammar.NodeID]bool{}
	var walk func(n *grammar.Node, depth int)
	walk = func(n *grammar.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		label := n.Name()
		if label == "" {
			label = "/"
		}
		if seen[n.ID()] {
			fmt.Printf("%s%s (shared)\n", indent, label)
			return
		}
		seen[n.ID()] = true
		fmt.Printf("%s%s [%s]\n", indent, label, n.Kind())
		for _, id := range n.Children() {
			walk(g.Node(id), depth+1)
		}
	}
	walk(g.Root(), 0)
}

func splitLast(text string) (prefix, partial string) {
	i := strings.LastIndexAny(text, " \t")
	if i < 0 {
		return "", text
	}
	return text[:i+1], text[i+1:]
}
