package server

import (
	"log/slog"
	"sync"
)

// SessionObserver is notified when sessions open and close.
type SessionObserver interface {
	SessionOpened(id string)
	SessionClosed(id string)
}

// SessionStats is a snapshot of session counters.
type SessionStats struct {
	Active       int   `json:"active"`
	TotalCreated int64 `json:"total_created"`
	TotalClosed  int64 `json:"total_closed"`
	Peak         int   `json:"peak"`
}

// SessionManager tracks the live sessions of a server.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	stats    SessionStats
	closed   bool

	observers []SessionObserver
	logger    *slog.Logger
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager(logger *slog.Logger, observers ...SessionObserver) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions:  make(map[string]*Session),
		observers: observers,
		logger:    logger,
	}
}

// Register adds s. It reports false if the manager is shut down, in which
// case the caller should close s.
func (m *SessionManager) Register(s *Session) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.sessions[s.ID] = s
	m.stats.TotalCreated++
	m.stats.Active = len(m.sessions)
	if m.stats.Active > m.stats.Peak {
		m.stats.Peak = m.stats.Active
	}
	m.mu.Unlock()

	for _, o := range m.observers {
		o.SessionOpened(s.ID)
	}
	m.logger.Debug("session opened", "session_id", s.ID)
	return true
}

// Remove forgets the session with id. It is called by Session.Close.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, id)
	m.stats.TotalClosed++
	m.stats.Active = len(m.sessions)
	m.mu.Unlock()

	for _, o := range m.observers {
		o.SessionClosed(id)
	}
}

// Get returns the session with id, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Stats returns a snapshot of the session counters.
func (m *SessionManager) Stats() SessionStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Shutdown closes every session and rejects new ones.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.logger.Info("sessions closed", "count", len(sessions))
}
