package grammar

import "fmt"

// DefinitionError reports an invalid node definition: a pattern that does
// not compile, a negative traversal limit, a duplicate sibling name, or a
// structurally impossible node (for example a routing node with neither a
// name nor a pattern).
type DefinitionError struct {
	Path   string // grammar path of the offending node, or its parent
	Reason string
	Err    error // underlying cause (e.g. regexp compile error), may be nil
}

func (e *DefinitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grammar definition %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("grammar definition %s: %s", e.Path, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// AliasError reports a failed alias resolution: malformed target path, a
// target that resolves to no nodes, a resolution cycle, or a zero-token
// loop introduced by the spliced edges.
type AliasError struct {
	Path   string // path of the alias's parent
	Target string // target path expression as written
	Reason string
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("alias %q at %s: %s", e.Target, e.Path, e.Reason)
}

func defErr(path, reason string, err error) *DefinitionError {
	return &DefinitionError{Path: path, Reason: reason, Err: err}
}

func aliasErr(path, target, reason string) *AliasError {
	return &AliasError{Path: path, Target: target, Reason: reason}
}
