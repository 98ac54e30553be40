// Package session tracks per-conversation history in memory.
//
// History is kept as complete exchanges (one user query plus the assistant
// answer) and rendered to a plain-text transcript for prompt injection.
// Only the most recent maxHistory exchanges are retained; older ones are
// dropped silently. Sessions idle past their TTL are pruned lazily on
// access and by the optional background sweeper.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = time.Hour

	// sweepInterval is how often the background sweeper scans for idle
	// sessions.
	sweepInterval = 5 * time.Minute
)

type exchange struct {
	query  string
	answer string
}

type session struct {
	exchanges  []exchange
	lastActive time.Time
}

// Manager is an in-memory session store, safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	maxHistory int
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the idle-session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// withClock injects a fake clock for tests.
func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager keeping at most maxHistory exchanges per
// session. maxHistory values below 1 are clamped to 1.
func NewManager(maxHistory int, logger *slog.Logger, opts ...Option) *Manager {
	if maxHistory < 1 {
		maxHistory = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		sessions:   make(map[string]*session),
		maxHistory: maxHistory,
		ttl:        DefaultTTL,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a new session and returns its ID.
func (m *Manager) Create() string {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &session{lastActive: m.now()}

	m.logger.Debug("created session", "session_id", id)
	return id
}

// History renders a session's transcript for prompt injection, one
// "User: ...\nAssistant: ..." pair per exchange. Unknown or expired
// sessions render as the empty string.
func (m *Manager) History(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return ""
	}

	lines := make([]string, 0, len(s.exchanges))
	for _, e := range s.exchanges {
		lines = append(lines, "User: "+e.query+"\nAssistant: "+e.answer)
	}
	return strings.Join(lines, "\n")
}

// AddExchange records one completed query/answer pair, creating the session
// if the ID is unknown. Exchanges past the retention window fall off the
// front.
func (m *Manager) AddExchange(id, query, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		s = &session{}
		m.sessions[id] = s
	}

	s.exchanges = append(s.exchanges, exchange{query: query, answer: answer})
	if n := len(s.exchanges); n > m.maxHistory {
		s.exchanges = s.exchanges[n-m.maxHistory:]
	}
	s.lastActive = m.now()
}

// Clear drops a session's history. The session ID stays valid.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.exchanges = nil
		s.lastActive = m.now()
	}
}

// Prune removes idle sessions and reports how many were dropped.
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		m.logger.Debug("pruned idle sessions", "count", dropped)
	}
	return dropped
}

// Run sweeps idle sessions until ctx is canceled. Intended to be started
// as a goroutine next to the HTTP server.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}

// expired reports whether a session has been idle past the TTL.
// Callers hold at least a read lock.
func (m *Manager) expired(s *session) bool {
	return m.ttl > 0 && m.now().Sub(s.lastActive) > m.ttl
}
