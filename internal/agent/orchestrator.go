package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/automentor/automentor/internal/llm"
	"github.com/automentor/automentor/internal/tools"
	"github.com/automentor/automentor/pkg/log"
)

// DefaultMaxIterations caps the reasoning/tool-call loop of one turn.
const DefaultMaxIterations = 15

// DefaultCallTimeout bounds a single chat completion call, on top of
// the client's own transport timeout.
const DefaultCallTimeout = 60 * time.Second

const remoteRetries = 2

// Orchestrator runs the reasoning loop for one turn: it repeatedly asks
// the model to either call a tool or answer, feeding every tool result
// back into the next reasoning request. It never returns an error to
// the facade; the worst case is a degraded textual answer.
type Orchestrator struct {
	client        *llm.Client
	registry      *tools.Registry
	maxIterations int
	callTimeout   time.Duration
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(client *llm.Client, registry *tools.Registry, maxIterations int, callTimeout time.Duration) *Orchestrator {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Orchestrator{
		client:        client,
		registry:      registry,
		maxIterations: maxIterations,
		callTimeout:   callTimeout,
	}
}

// Run executes the agent loop for one turn.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Result {
	result := &Result{
		Steps: make([]ToolCallRecord, 0),
	}

	maxIterations := o.maxIterations
	if req.MaxIterations > 0 {
		maxIterations = req.MaxIterations
	}

	systemPrompt := req.SystemPrompt
	if req.ReplyLanguage != "" {
		systemPrompt += fmt.Sprintf("\n\nWrite your final answer in %s.", req.ReplyLanguage)
	}

	// The request carries the bounded memory, the user message, and the
	// complete ordered transcript of this turn's tool steps so far.
	messages := make([]llm.Message, 0, len(req.Memory)+1)
	messages = append(messages, req.Memory...)
	messages = append(messages, llm.Message{Role: "user", Content: req.UserMessage})

	toolDefs := o.registry.ToOpenAIFormat()
	opts := llm.NewChatCompletionOptions().WithSystemPrompt(systemPrompt)

	for i := 0; i < maxIterations; i++ {
		result.Iterations++

		resp, err := o.complete(ctx, messages, toolDefs, opts)
		if err != nil {
			log.Error("model call failed at iteration %d: %v", i+1, err)
			result.Output = fmt.Sprintf("I could not reach the language model (%v). Please try again in a moment.", err)
			return result
		}

		if len(resp.Choices) == 0 {
			result.Output = "I received an empty response from the language model and could not finish answering. Please rephrase your request."
			return result
		}

		choice := resp.Choices[0]
		assistantMsg := choice.Message

		switch choice.FinishReason {
		case "tool_calls":
			if len(assistantMsg.ToolCalls) == 0 {
				// Claimed tool calls but sent none: recover with
				// whatever content is there.
				result.Output = orFallback(assistantMsg.Content)
				return result
			}

			messages = append(messages, assistantMsg)

			for _, toolCall := range assistantMsg.ToolCalls {
				record := o.executeTool(ctx, toolCall)
				result.Steps = append(result.Steps, record)

				messages = append(messages, llm.Message{
					Role:       "tool",
					Content:    record.Result,
					ToolCallID: toolCall.ID,
				})

				log.Info("tool %s executed: error=%v", toolCall.Function.Name, record.IsError)
			}

		default:
			// "stop" or anything unexpected: treat the content as the
			// final answer rather than failing the turn.
			result.Output = orFallback(assistantMsg.Content)
			return result
		}
	}

	log.Warn("iteration cap (%d) reached without a final answer", maxIterations)
	result.Output = fmt.Sprintf("I could not finish reasoning about this within %d steps. Here is what I gathered so far: %s",
		maxIterations, summarizeSteps(result.Steps))
	return result
}

// complete performs one chat completion with a per-call timeout and a
// single retry on failure.
func (o *Orchestrator) complete(ctx context.Context, messages []llm.Message, toolDefs []llm.ToolDefinition, opts *llm.ChatCompletionOptions) (*llm.ChatResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= remoteRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		resp, err := o.client.ChatCompletionWithTools(callCtx, messages, toolDefs, opts)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		log.Warn("chat completion attempt %d/%d failed: %v", attempt, remoteRetries, err)
	}
	return nil, lastErr
}

// executeTool resolves and runs one requested tool call. Unknown names
// and malformed arguments become error-text records fed back to the
// model instead of failing the turn.
func (o *Orchestrator) executeTool(ctx context.Context, toolCall llm.ToolCall) ToolCallRecord {
	record := ToolCallRecord{
		ToolName:  toolCall.Function.Name,
		Arguments: toolCall.Function.Arguments,
	}

	tool, exists := o.registry.Get(toolCall.Function.Name)
	if !exists {
		record.Result = fmt.Sprintf("Tool %q not found. Available tools: %v", toolCall.Function.Name, o.registry.List())
		record.IsError = true
		return record
	}

	args := json.RawMessage(toolCall.Function.Arguments)
	if len(args) == 0 || !json.Valid(args) {
		record.Result = fmt.Sprintf("Arguments for %q are not valid JSON.", toolCall.Function.Name)
		record.IsError = true
		return record
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		record.Result = fmt.Sprintf("Tool execution error: %v", err)
		record.IsError = true
		return record
	}

	record.Result = result.Content
	record.IsError = result.IsError
	return record
}

func orFallback(content string) string {
	if content != "" {
		return content
	}
	return "I could not produce an answer for this request. Please rephrase it."
}

func summarizeSteps(steps []ToolCallRecord) string {
	if len(steps) == 0 {
		return "no tool results were collected."
	}
	last := steps[len(steps)-1]
	return fmt.Sprintf("%d tool calls were made, the last one (%s) returned: %s", len(steps), last.ToolName, last.Result)
}
