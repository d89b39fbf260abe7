package server

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventType is the kind of a client event.
type EventType string

const (
	EventChange EventType = "change"
	EventBlur   EventType = "blur"
	EventSubmit EventType = "submit"
	EventReset  EventType = "reset"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventChange, EventBlur, EventSubmit, EventReset:
		return true
	}
	return false
}

// Event is one decoded client message.
type Event struct {
	Type      EventType       `json:"type"`
	Field     string          `json:"field,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	SessionID string          `json:"-"`
}

// decodeEvent parses a client message.
func decodeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if !ev.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, ev.Type)
	}
	if (ev.Type == EventChange || ev.Type == EventBlur) && ev.Field == "" {
		return nil, fmt.Errorf("%w: %s without field", ErrInvalidMessage, ev.Type)
	}
	return &ev, nil
}

// EventHandler applies one event.
type EventHandler func(ctx context.Context, ev *Event) error

// EventMiddleware wraps an EventHandler.
type EventMiddleware func(next EventHandler) EventHandler

// chain composes middleware so that the first one runs outermost.
func chain(h EventHandler, mws []EventMiddleware) EventHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Server message types.
const (
	MessageHello        = "hello"
	MessageField        = "field"
	MessageSubmitting   = "submitting"
	MessageToast        = "toast"
	MessageToastDismiss = "toast_dismiss"
	MessageError        = "error"
)

// Message is a server-to-client message.
type Message struct {
	Type       string `json:"type"`
	Session    string `json:"session,omitempty"`
	Field      string `json:"field,omitempty"`
	Value      any    `json:"value,omitempty"`
	Error      string `json:"error,omitempty"`
	Status     string `json:"status,omitempty"`
	Submitting bool   `json:"submitting,omitempty"`
	Toast      any    `json:"toast,omitempty"`
	Message    string `json:"message,omitempty"`
}
