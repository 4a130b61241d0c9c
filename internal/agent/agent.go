package agent

import (
	"context"
	"time"

	"github.com/automentor/automentor/internal/llm"
	"github.com/automentor/automentor/internal/tools"
)

// Agent turns one user message plus bounded memory into a final answer,
// invoking tools along the way.
type Agent interface {
	// Run executes one turn. The result always carries a non-empty
	// Output; failures degrade into textual answers.
	Run(ctx context.Context, req Request) *Result
}

// LLMAgent implements Agent on top of an LLM with tool calling.
type LLMAgent struct {
	client        *llm.Client
	registry      *tools.Registry
	maxIterations int
	callTimeout   time.Duration
}

// NewLLMAgent creates a new LLM-based agent over the given tool set.
func NewLLMAgent(client *llm.Client, registry *tools.Registry, maxIterations int, callTimeout time.Duration) *LLMAgent {
	return &LLMAgent{
		client:        client,
		registry:      registry,
		maxIterations: maxIterations,
		callTimeout:   callTimeout,
	}
}

// Run executes one turn of the reasoning loop.
func (a *LLMAgent) Run(ctx context.Context, req Request) *Result {
	orchestrator := NewOrchestrator(a.client, a.registry, a.maxIterations, a.callTimeout)
	return orchestrator.Run(ctx, req)
}
