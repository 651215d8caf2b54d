// Package parse runs input against a resolved grammar: token matching,
// variable collection, completion candidates, contextual help and action
// dispatch.
//
// A Grammar is shared read-only; every Parse call allocates a fresh
// Context that carries all mutable state for that one run.
package parse

import (
	"github.com/gramline/gramline/pkg/grammar"
)

// Context is the state of one parse run. It is mutated only by Parse and
// read-only afterwards; it must not be shared between concurrent runs.
type Context struct {
	g       *grammar.Grammar
	input   string
	cursor  int
	current grammar.NodeID
	vars    grammar.Vars
	counts  map[grammar.NodeID]int
	history []grammar.NodeID
	cause   *VariableParseError
}

func newContext(g *grammar.Grammar, input string) *Context {
	return &Context{
		g:       g,
		input:   input,
		current: g.Root().ID(),
		vars:    grammar.Vars{},
		counts:  map[grammar.NodeID]int{},
	}
}

// Grammar returns the grammar this context was parsed against.
func (c *Context) Grammar() *grammar.Grammar { return c.g }

// Input returns the full input text.
func (c *Context) Input() string { return c.input }

// Parsed returns the consumed prefix of the input, separators included.
// Parsed()+Remaining() is always exactly the input.
func (c *Context) Parsed() string { return c.input[:c.cursor] }

// Remaining returns the unconsumed suffix of the input.
func (c *Context) Remaining() string { return c.input[c.cursor:] }

// Cursor returns the byte offset of the parse frontier.
func (c *Context) Cursor() int { return c.cursor }

// Current returns the last node entered, or the root when nothing matched.
func (c *Context) Current() *grammar.Node { return c.g.Node(c.current) }

// Vars returns the collected variables. The map is owned by the context;
// callers must treat it as read-only.
func (c *Context) Vars() grammar.Vars { return c.vars }

// History returns the IDs of the nodes entered, in order.
func (c *Context) History() []grammar.NodeID { return c.history }

// Traversed returns how many times the given node was entered during this
// run. Shared (aliased) nodes have a single count no matter which path
// reached them.
func (c *Context) Traversed(id grammar.NodeID) int { return c.counts[id] }

// Cause returns the variable parse failure that halted matching, or nil.
func (c *Context) Cause() error {
	if c.cause == nil {
		return nil
	}
	return c.cause
}

// eligible reports whether the node's traversal budget allows entering it.
func (c *Context) eligible(n *grammar.Node) bool {
	limit := n.Limit()
	return limit == 0 || c.counts[n.ID()] < limit
}

// enter records the node as entered: bumps its traversal count, stores a
// variable value when given one, and appends to the history.
func (c *Context) enter(n *grammar.Node, value any, hasValue bool) {
	c.counts[n.ID()]++
	c.history = append(c.history, n.ID())
	c.current = n.ID()
	if !hasValue {
		return
	}
	key := n.VarName()
	if n.Limit() != 1 {
		seq, _ := c.vars[key].([]any)
		c.vars[key] = append(seq, value)
	} else {
		c.vars[key] = value
	}
}
