package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and server error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrSendQueueFull is returned when a client does not keep up with its messages.
	ErrSendQueueFull = errors.New("server: send queue full")

	// ErrInvalidMessage is returned when a client message cannot be decoded.
	ErrInvalidMessage = errors.New("server: invalid message")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}
