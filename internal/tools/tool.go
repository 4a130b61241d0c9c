package tools

import (
	"context"
	"encoding/json"
)

// ToolResult is the outcome of one tool execution. Failures travel as
// IsError result text fed back to the agent so reasoning can
// self-correct; they are not raised to the caller.
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Tool is a named, schema-validated capability the agent can call.
type Tool interface {
	// Name returns the unique name of the tool
	Name() string

	// Description returns a description of what the tool does
	Description() string

	// Parameters returns the JSON Schema for the tool's parameters
	Parameters() json.RawMessage

	// Execute runs the tool with the given arguments and returns the result
	Execute(ctx context.Context, args json.RawMessage) (ToolResult, error)
}
