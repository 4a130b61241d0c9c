package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automentor/automentor/internal/agent"
	"github.com/automentor/automentor/internal/dataset"
)

type stubAgent struct{}

func (stubAgent) Run(_ context.Context, req agent.Request) *agent.Result {
	return &agent.Result{Output: "ok", Iterations: 1}
}

func testMeta() dataset.Metadata {
	return dataset.Metadata{
		Columns:    []string{"Brand", "Price"},
		Categories: map[string][]string{"Brand": {"BMW"}},
		Rows:       1,
	}
}

func TestManager_OpenGetClose(t *testing.T) {
	t.Parallel()

	m := NewManager(stubAgent{}, testMeta(), time.Hour)

	s := m.Open("Ada Lovelace", "likes fast cars")
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "Ada Lovelace", s.FullName)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	m.Close(s.ID)
	assert.Equal(t, 0, m.Count())

	_, err = m.Get(s.ID)
	require.Error(t, err)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	m := NewManager(stubAgent{}, testMeta(), time.Hour)

	a := m.Open("Alice", "")
	b := m.Open("Bob", "")
	require.NotEqual(t, a.ID, b.ID)

	a.Bot.GenerateResponse(context.Background(), "hello from alice")
	assert.Len(t, a.Bot.ChatHistory(), 2)
	assert.Empty(t, b.Bot.ChatHistory())
}

func TestManager_SweepClosesIdleSessions(t *testing.T) {
	t.Parallel()

	m := NewManager(stubAgent{}, testMeta(), time.Millisecond)

	idle := m.Open("Idle User", "")
	active := m.Open("Active User", "")

	time.Sleep(5 * time.Millisecond)
	active.Touch()

	closed := m.Sweep()
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, m.Count())

	_, err := m.Get(idle.ID)
	assert.Error(t, err)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
}

func TestManager_SweeperSchedule(t *testing.T) {
	t.Parallel()

	m := NewManager(stubAgent{}, testMeta(), time.Hour)
	require.NoError(t, m.StartSweeper("@every 1h"))
	m.StopSweeper()

	assert.Error(t, m.StartSweeper("not a cron expression"))
}
