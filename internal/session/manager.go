// Package session tracks named conversations and expires the idle ones.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/automentor/automentor/internal/agent"
	"github.com/automentor/automentor/internal/chatbot"
	"github.com/automentor/automentor/internal/dataset"
	"github.com/automentor/automentor/internal/prompt"
	"github.com/automentor/automentor/pkg/log"
)

// Session is one user's conversation with its own chatbot state.
type Session struct {
	ID          string
	FullName    string
	Preferences string
	Bot         *chatbot.Chatbot

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager creates, looks up and expires sessions. Each session gets its
// own chatbot so memories never mix between users.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	agent   agent.Agent
	meta    dataset.Metadata
	idleTTL time.Duration

	cron *cron.Cron
}

// NewManager creates a session manager. idleTTL is how long a session
// may stay inactive before the sweep closes it.
func NewManager(a agent.Agent, meta dataset.Metadata, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		agent:    a,
		meta:     meta,
		idleTTL:  idleTTL,
	}
}

// Open starts a new session for the named user. The user's stated
// preferences are baked into the session's system prompt.
func (m *Manager) Open(fullName, preferences string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		FullName:    fullName,
		Preferences: preferences,
		Bot:         chatbot.New(m.agent, prompt.Render(m.meta, preferences)),
		lastSeen:    time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info("session %s opened for %s", s.ID, fullName)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return s, nil
}

// Close removes a session. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes every session idle for longer than the TTL and returns
// how many were closed.
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	closed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			closed++
			log.Info("session %s expired after inactivity", id)
		}
	}
	return closed
}

// StartSweeper schedules Sweep on the given cron expression and starts
// the scheduler.
func (m *Manager) StartSweeper(cronExpr string) error {
	c := cron.New()
	if _, err := c.AddFunc(cronExpr, func() {
		if n := m.Sweep(); n > 0 {
			log.Info("sweeper closed %d idle sessions", n)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	c.Start()
	m.cron = c
	return nil
}

// StopSweeper stops the scheduler. Safe to call when never started.
func (m *Manager) StopSweeper() {
	if m.cron != nil {
		m.cron.Stop()
	}
}
