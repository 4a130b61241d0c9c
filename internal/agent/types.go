package agent

import "github.com/automentor/automentor/internal/llm"

// Request is one turn's input to the agent loop.
type Request struct {
	// SystemPrompt is the rendered system prompt for the session.
	SystemPrompt string

	// Memory is the bounded reasoning window of prior exchanges. It is
	// included verbatim in every reasoning request of the turn.
	Memory []llm.Message

	// UserMessage is the current user message.
	UserMessage string

	// ReplyLanguage optionally names the language the final answer
	// should be written in.
	ReplyLanguage string

	// MaxIterations overrides the loop's iteration cap when positive.
	MaxIterations int
}

// Result is the outcome of one agent turn. Output is always non-empty:
// turns that fail or call no tools still synthesize an answer.
type Result struct {
	// Output is the final text response.
	Output string

	// Steps records every tool invocation of the turn in call order.
	Steps []ToolCallRecord

	// Iterations is the number of reasoning requests made.
	Iterations int
}

// ToolCallRecord is one intermediate step: a tool invocation and its
// result. Transient within a turn, never persisted across turns.
type ToolCallRecord struct {
	// ToolName is the name of the tool that was called.
	ToolName string

	// Arguments is the JSON arguments passed to the tool.
	Arguments string

	// Result is the output from the tool (success or error text).
	Result string

	// IsError indicates the tool reported a failure.
	IsError bool
}
