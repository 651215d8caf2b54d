package parse

import "fmt"

// VariableParseError records a variable whose parse hook rejected the
// matched token. It halts the run at that point and is reported through
// the context, not as a Parse return value.
type VariableParseError struct {
	Path  string // grammar path of the variable node
	Token string // matched text the hook rejected
	Err   error
}

func (e *VariableParseError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Token, e.Path, e.Err)
}

func (e *VariableParseError) Unwrap() error { return e.Err }

// IncompleteError reports a dispatch attempt on input that did not end at
// an action node: unmatched trailing input, or a valid prefix with no
// terminal. Parsed and Remaining locate the failure for user-facing
// reporting.
type IncompleteError struct {
	Parsed    string
	Remaining string
	Cause     error // variable parse failure that halted matching, if any
}

func (e *IncompleteError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Remaining != "" {
		return fmt.Sprintf("invalid input at %q", e.Remaining)
	}
	return "incomplete command"
}

func (e *IncompleteError) Unwrap() error { return e.Cause }

// DispatchError reports a misconfigured action: one that requires a user
// object dispatched without one, or one with no callback bound.
type DispatchError struct {
	Path   string
	Reason string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %s", e.Path, e.Reason)
}
