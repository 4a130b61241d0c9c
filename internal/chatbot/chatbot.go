package chatbot

import (
	"context"
	"fmt"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/automentor/automentor/internal/agent"
	"github.com/automentor/automentor/internal/llm"
	"github.com/automentor/automentor/pkg/log"
)

// Chatbot is the conversational facade over the agent. It owns two
// separate histories: the full display history (unbounded, what a UI
// renders) and the bounded reasoning memory (what the agent sees).
type Chatbot struct {
	agent        agent.Agent
	systemPrompt string
	memory       *BoundedMemory
	history      []Message
	lastSteps    []agent.ToolCallRecord
}

// New creates a chatbot bound to an agent and a rendered system prompt.
func New(a agent.Agent, systemPrompt string) *Chatbot {
	return &Chatbot{
		agent:        a,
		systemPrompt: systemPrompt,
		memory:       NewBoundedMemory(),
	}
}

// Greet records a welcome message in the display history and returns
// it. The greeting does not enter the reasoning memory.
func (c *Chatbot) Greet(fullName string) string {
	greeting := fmt.Sprintf("Hello %s! I am AutoMentor, your personal car advisor. Ask me anything about the cars on sale: prices, brands, or what would fit you best.", fullName)
	c.history = append(c.history, Message{Role: RoleAssistant, Content: greeting})
	return greeting
}

// GenerateResponse runs one full conversation turn: it records the user
// message, invokes the agent with the bounded memory, records the
// answer, and returns it. It always returns displayable text.
func (c *Chatbot) GenerateResponse(ctx context.Context, message string) string {
	c.history = append(c.history, Message{Role: RoleUser, Content: message})

	req := agent.Request{
		SystemPrompt:  c.systemPrompt,
		Memory:        toLLMMessages(c.memory.Messages()),
		UserMessage:   message,
		ReplyLanguage: detectReplyLanguage(message),
	}
	result := c.agent.Run(ctx, req)
	c.lastSteps = result.Steps

	log.Debug("turn completed: %d iterations, %d tool calls", result.Iterations, len(result.Steps))

	c.memory.Append(
		Message{Role: RoleUser, Content: message},
		Message{Role: RoleAssistant, Content: result.Output},
	)
	c.history = append(c.history, Message{Role: RoleAssistant, Content: result.Output})
	return result.Output
}

// ChatHistory returns a copy of the full display history, greeting
// included, oldest first.
func (c *Chatbot) ChatHistory() []Message {
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// MemorySize reports how many messages the reasoning window holds.
func (c *Chatbot) MemorySize() int {
	return c.memory.Len()
}

// LastSteps returns the tool calls made during the most recent turn.
func (c *Chatbot) LastSteps() []agent.ToolCallRecord {
	out := make([]agent.ToolCallRecord, len(c.lastSteps))
	copy(out, c.lastSteps)
	return out
}

func toLLMMessages(msgs []Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// detectReplyLanguage returns the English name of the user's language
// when it can be detected reliably and is not English. The agent uses
// it to answer in the same language the question was asked in.
func detectReplyLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Lang == whatlanggo.Eng {
		return ""
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return ""
	}
	tag := language.Make(code)
	if tag == language.Und {
		return ""
	}
	return display.English.Languages().Name(tag)
}
