package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/scene"
)

var ErrNotFound = errors.New("session not found")

// DefaultID names the session used when a caller does not pick one.
const DefaultID = "default"

// Manager keeps editing sessions keyed by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

// NewManager creates a manager whose sessions share opts.
func NewManager(opts Options) *Manager {
	return &Manager{sessions: make(map[string]*Session), opts: opts}
}

// Create starts a session with a fresh UUID.
func (m *Manager) Create(sc *scene.Scene) *Session {
	return m.CreateWithID(uuid.NewString(), sc)
}

// CreateWithID starts a session under id, replacing any existing one.
func (m *Manager) CreateWithID(id string, sc *scene.Scene) *Session {
	s := New(id, sc, m.opts)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	logger.Info("Session created", "session", id)
	return s
}

// Get looks up a session and refreshes its activity time.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch(time.Now())
	return s, nil
}

// Remove deletes a session and reports whether it existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Lock()
		s.Editor().Cancel()
		s.Unlock()
		logger.Info("Session removed", "session", id)
	}
	return ok
}

// IDs lists session IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cleanup removes sessions idle for longer than timeout. The default session
// and attached sessions are never expired.
func (m *Manager) Cleanup(timeout time.Duration, now time.Time) int {
	var expired []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if id == DefaultID || s.Attached() {
			continue
		}
		if now.Sub(s.LastSeen()) > timeout {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()
	for _, id := range expired {
		m.Remove(id)
	}
	return len(expired)
}
