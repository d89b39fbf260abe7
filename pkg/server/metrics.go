package server

import "time"

// ServerMetrics is a point-in-time snapshot served by the health endpoint.
type ServerMetrics struct {
	// Sessions
	ActiveSessions int64 `json:"active_sessions"`
	SessionCreates int64 `json:"session_creates"`
	SessionCloses  int64 `json:"session_closes"`
	PeakSessions   int64 `json:"peak_sessions"`

	// Uptime
	StartedAt   time.Time `json:"started_at"`
	CollectedAt time.Time `json:"collected_at"`
}

// Metrics collects and returns server metrics.
func (s *Server) Metrics() *ServerMetrics {
	stats := s.sessions.Stats()

	return &ServerMetrics{
		ActiveSessions: int64(stats.Active),
		SessionCreates: stats.TotalCreated,
		SessionCloses:  stats.TotalClosed,
		PeakSessions:   int64(stats.Peak),
		StartedAt:      s.startedAt,
		CollectedAt:    time.Now(),
	}
}
