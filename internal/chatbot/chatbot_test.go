package chatbot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automentor/automentor/internal/agent"
)

// stubAgent answers every turn deterministically and records each
// request for inspection.
type stubAgent struct {
	requests []agent.Request
	steps    []agent.ToolCallRecord
}

func (s *stubAgent) Run(_ context.Context, req agent.Request) *agent.Result {
	s.requests = append(s.requests, req)
	return &agent.Result{
		Output:     fmt.Sprintf("answer to %q", req.UserMessage),
		Steps:      s.steps,
		Iterations: 1,
	}
}

func TestGenerateResponse_RecordsBothHistories(t *testing.T) {
	t.Parallel()

	stub := &stubAgent{}
	bot := New(stub, "system prompt")

	out := bot.GenerateResponse(context.Background(), "how many cars?")
	assert.Equal(t, `answer to "how many cars?"`, out)

	history := bot.ChatHistory()
	require.Len(t, history, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "how many cars?"}, history[0])
	assert.Equal(t, Message{Role: RoleAssistant, Content: out}, history[1])

	assert.Equal(t, 2, bot.MemorySize())
}

func TestGenerateResponse_MemoryStaysBounded(t *testing.T) {
	t.Parallel()

	stub := &stubAgent{}
	bot := New(stub, "system prompt")

	for i := 0; i < 6; i++ {
		bot.GenerateResponse(context.Background(), fmt.Sprintf("question %d", i))
		assert.LessOrEqual(t, bot.MemorySize(), MemoryCapacity)
	}

	// Display history keeps everything.
	assert.Len(t, bot.ChatHistory(), 12)

	// The last agent request only saw the two most recent exchanges.
	last := stub.requests[len(stub.requests)-1]
	require.Len(t, last.Memory, MemoryCapacity)
	assert.Equal(t, "question 3", last.Memory[0].Content)
	assert.Equal(t, "question 5", last.UserMessage)
}

func TestGreet_DisplayOnly(t *testing.T) {
	t.Parallel()

	bot := New(&stubAgent{}, "system prompt")

	greeting := bot.Greet("Ada Lovelace")
	assert.Contains(t, greeting, "Ada Lovelace")
	assert.Contains(t, greeting, "AutoMentor")

	history := bot.ChatHistory()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
	assert.Equal(t, 0, bot.MemorySize())
}

func TestGenerateResponse_PassesSystemPromptAndLanguage(t *testing.T) {
	t.Parallel()

	stub := &stubAgent{}
	bot := New(stub, "the rendered prompt")

	bot.GenerateResponse(context.Background(), "What is the average price of the diesel cars in the listings?")
	require.Len(t, stub.requests, 1)
	assert.Equal(t, "the rendered prompt", stub.requests[0].SystemPrompt)
	assert.Empty(t, stub.requests[0].ReplyLanguage, "English input should carry no language hint")
}

func TestLastSteps(t *testing.T) {
	t.Parallel()

	stub := &stubAgent{steps: []agent.ToolCallRecord{
		{ToolName: "car_dataset_query", Result: "n\n3"},
	}}
	bot := New(stub, "system prompt")

	bot.GenerateResponse(context.Background(), "count")
	steps := bot.LastSteps()
	require.Len(t, steps, 1)
	assert.Equal(t, "car_dataset_query", steps[0].ToolName)
}

func TestDetectReplyLanguage(t *testing.T) {
	t.Parallel()

	assert.Empty(t, detectReplyLanguage("What is the average price of the diesel cars in this dataset? I would like to compare it with petrol cars."))

	got := detectReplyLanguage("¿Cuál es el precio promedio de los coches diésel? Me gustaría saberlo porque estoy pensando en comprar un coche nuevo muy pronto.")
	assert.Equal(t, "Spanish", got)
}
