package parse

import (
	"strings"

	"github.com/gramline/gramline/pkg/grammar"
)

// Execute parses input and, when the run terminates at an action node with
// nothing left over, invokes the action's callback with the collected
// variables. The returned context is always usable regardless of the
// error.
//
// A run that does not reach an action yields an *IncompleteError carrying
// parsed/remaining; an action that requires a user object dispatched
// without one yields a *DispatchError. Callback errors and panics
// propagate to the caller unchanged. Blank input is a no-op.
func Execute(g *grammar.Grammar, input string, user any) (*Context, any, error) {
	ctx := Parse(g, input)

	if strings.TrimSpace(input) == "" {
		return ctx, nil, nil
	}
	act := terminalAction(ctx)
	if strings.TrimSpace(ctx.Remaining()) != "" || act == nil {
		return ctx, nil, &IncompleteError{
			Parsed:    ctx.Parsed(),
			Remaining: ctx.Remaining(),
			Cause:     ctx.Cause(),
		}
	}
	if act.ID() != ctx.current {
		ctx.enter(act, nil, false)
	}

	cb := act.Callback()
	if cb == nil {
		return ctx, nil, &DispatchError{Path: g.Path(act.ID()), Reason: "no callback bound"}
	}
	if act.NeedsUser() && user == nil {
		return ctx, nil, &DispatchError{Path: g.Path(act.ID()), Reason: "action requires a user object"}
	}

	result, err := cb(&grammar.Call{User: user, Vars: ctx.Vars()})
	return ctx, result, err
}

// terminalAction returns the action the run terminated on: the frontier
// node itself when an action with an explicit pattern consumed the final
// token, otherwise the first eligible end-of-input action child at the
// frontier.
func terminalAction(ctx *Context) *grammar.Node {
	cur := ctx.Current()
	if cur.Kind() == grammar.KindAction {
		return cur
	}
	for _, id := range cur.Children() {
		child := ctx.g.Node(id)
		if child.Kind() != grammar.KindAction || !ctx.eligible(child) {
			continue
		}
		if _, ok := child.MatchToken(ctx.input, ctx.cursor); ok {
			return child
		}
	}
	return nil
}
