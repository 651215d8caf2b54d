package main

import (
	"fmt"

	"github.com/gramline/gramline/pkg/grammar"
	"github.com/gramline/gramline/pkg/logging"
	"github.com/gramline/gramline/pkg/shell"
	"github.com/gramline/gramline/pkg/xmlgrammar"
)

// demoGrammar builds the built-in grammar: a small service-control style
// command set that exercises typed variables, multi-traversal options,
// candidate-constrained choices and aliasing.
func demoGrammar(buf *logging.BufferHandler) (*grammar.Grammar, error) {
	return grammar.New(demoDefs(buf)...)
}

func demoDefs(buf *logging.BufferHandler) []grammar.Def {
	echo := func(format string) grammar.ActionFunc {
		return func(call *grammar.Call) (any, error) {
			fmt.Printf(format+"\n", call.Vars)
			return nil, nil
		}
	}

	showLog := func(call *grammar.Call) (any, error) {
		n := 10
		if v, ok := call.Vars["count"].(int); ok {
			n = v
		}
		if buf == nil {
			return nil, nil
		}
		for _, e := range buf.Recent(n) {
			fmt.Println(e)
		}
		return nil, nil
	}

	quit := func(*grammar.Call) (any, error) { return nil, shell.ErrExit }

	return []grammar.Def{
		grammar.NewNode("show", "Show information",
			grammar.NewNode("version", "Show engine version",
				grammar.NewAction("Print the version", func(*grammar.Call) (any, error) {
					fmt.Println("gramline demo grammar")
					return nil, nil
				})),
			grammar.NewNode("log", "Show recent session log entries",
				grammar.NewAction("Print the last 10 entries", showLog),
				grammar.Int("count", "Number of entries to print",
					grammar.NewAction("Print the last N entries", showLog))),
			grammar.FileName("file", "Show a file's completion candidates",
				grammar.NewAction("Print the chosen file name", echo("file: %v"))),
		),
		grammar.NewNode("ping", "Probe a remote host",
			grammar.Hostname("host", "Host to probe",
				grammar.NewAction("Probe once", echo("pinging %v")),
				grammar.NewNode("count", "Number of probes",
					grammar.Int("probes", "Probe count",
						grammar.NewAction("Probe N times", echo("pinging %v")))))),
		grammar.NewNode("signal", "Send a signal to a process",
			grammar.Choice("signame", "Signal name", []string{"TERM", "KILL", "HUP"},
				grammar.Int("pid", "Process ID",
					grammar.NewAction("Send the signal", echo("signalling %v"))))),
		grammar.NewNode("set", "Set session values",
			grammar.NewGroup(grammar.Unlimited,
				grammar.Word("name", "Value name",
					grammar.QuotedString("value", "Value text",
						grammar.NewAlias("/set/*")))),
			grammar.NewAction("Apply the collected values", echo("set %v"))),
		// "do" mirrors the whole top level, the way config-mode CLIs
		// expose operational commands under a prefix word.
		grammar.NewNode("do", "Run any top-level command",
			grammar.NewAlias("/show"),
			grammar.NewAlias("/ping")),
		grammar.NewNode("quit", "Exit the shell", grammar.NewAction("Exit", quit)),
		grammar.NewNode("exit", "Exit the shell", grammar.NewAction("Exit", quit)),
	}
}

// demoRegistry exposes the demo hooks to XML grammars so `gramline check`
// and `gramline shell grammar.xml` can reference them by name.
func demoRegistry(buf *logging.BufferHandler) *xmlgrammar.Registry {
	return &xmlgrammar.Registry{
		Parsers: map[string]grammar.ParseFunc{
			"int": func(token string) (any, error) {
				var n int
				_, err := fmt.Sscanf(token, "%d", &n)
				return n, err
			},
		},
		Candidates: map[string]grammar.CandidateFunc{},
		Callbacks: map[string]grammar.ActionFunc{
			"echo": func(call *grammar.Call) (any, error) {
				fmt.Printf("%v\n", call.Vars)
				return nil, nil
			},
			"quit": func(*grammar.Call) (any, error) { return nil, shell.ErrExit },
		},
	}
}
