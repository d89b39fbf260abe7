package server

import (
	"net/http"
)

// HandleWebSocket upgrades the request and runs a live session until the
// client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(s.baseCtx, conn, s.config.SessionConfig, sessionDeps{
		form:       s.form,
		uploads:    s.uploads,
		middleware: s.middleware,
		logger:     s.logger,
		onClose:    func(sess *Session) { s.sessions.Remove(sess.ID) },
	})
	if !s.sessions.Register(session) {
		session.Close()
		conn.Close()
		return
	}

	go session.WriteLoop()
	session.ReadLoop()
}
