package tools

import "fmt"

// InputError reports tool arguments that are missing or of the wrong
// type. Non-fatal: it becomes error text in the ToolResult.
type InputError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input for %s: field %q %s", e.Tool, e.Field, e.Reason)
}

// ExecutionError reports a tool request that parsed but could not be
// executed: invalid syntax, a disallowed construct, or a runtime
// failure during evaluation. Non-fatal: it becomes error text in the
// ToolResult.
type ExecutionError struct {
	Tool  string
	Input string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed for input %q: %v", e.Tool, e.Input, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
