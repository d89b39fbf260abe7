package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/regform/internal/registration"
	"github.com/vango-dev/regform/pkg/form"
	"github.com/vango-dev/regform/pkg/toast"
	"github.com/vango-dev/regform/pkg/upload"
)

// Session is one browser tab's live form.
//
// Events are applied one at a time on the goroutine running ReadLoop.
// Messages for the client are queued and written by WriteLoop, so store
// subscribers and toast timers never touch the connection directly.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	conn    *websocket.Conn
	config  *SessionConfig
	store   *form.Store[registration.Draft]
	toasts  *toast.Center
	submit  *registration.Submitter
	uploads upload.Store
	handler EventHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Session)
	unsubs    []func()

	lastActive atomic.Int64
	eventCount atomic.Int64
}

// sessionDeps are the shared collaborators every session uses.
type sessionDeps struct {
	form       *form.Form[registration.Draft]
	uploads    upload.Store
	middleware []EventMiddleware
	logger     *slog.Logger
	onClose    func(*Session)
}

// newSession creates a session for conn. conn may be nil, in which case
// queued messages are only observable through the send channel.
func newSession(ctx context.Context, conn *websocket.Conn, config *SessionConfig, deps sessionDeps) *Session {
	ctx, cancel := context.WithCancel(ctx)

	id := uuid.NewString()
	logger := deps.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", id)

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		store:     form.NewStore(deps.form),
		uploads:   deps.uploads,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		send:      make(chan []byte, config.SendQueue),
		done:      make(chan struct{}),
		onClose:   deps.onClose,
	}
	s.toasts = toast.NewCenter(s, toast.WithDuration(config.ToastDuration))
	s.submit = registration.NewSubmitter(s.toasts, logger)
	s.handler = chain(s.apply, deps.middleware)
	s.touch()

	for _, field := range deps.form.Fields() {
		s.unsubs = append(s.unsubs, s.store.Subscribe(field, s.sendField))
	}
	s.unsubs = append(s.unsubs, s.store.SubscribeSubmitting(func(submitting bool) {
		s.queue(Message{Type: MessageSubmitting, Submitting: submitting})
	}))

	s.queue(Message{Type: MessageHello, Session: id})
	return s
}

// Store returns the session's form store.
func (s *Session) Store() *form.Store[registration.Draft] {
	return s.store
}

// Toasts returns the session's notification center.
func (s *Session) Toasts() *toast.Center {
	return s.toasts
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LastActive returns when the client last sent a message.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// EventCount returns the number of events received.
func (s *Session) EventCount() int64 {
	return s.eventCount.Load()
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Emit implements toast.Emitter.
func (s *Session) Emit(name string, data any) {
	switch name {
	case toast.EventName:
		s.queue(Message{Type: MessageToast, Toast: data})
	case toast.DismissEventName:
		s.queue(Message{Type: MessageToastDismiss, Toast: data})
	}
}

// Handle runs ev through the middleware chain and applies it.
func (s *Session) Handle(ev *Event) error {
	select {
	case <-s.done:
		return &SessionError{SessionID: s.ID, Op: string(ev.Type), Err: ErrSessionClosed}
	default:
	}
	ev.SessionID = s.ID
	s.eventCount.Add(1)
	return s.handler(s.ctx, ev)
}

// apply is the innermost event handler.
func (s *Session) apply(_ context.Context, ev *Event) error {
	switch ev.Type {
	case EventChange:
		value, err := s.decodeValue(ev.Field, ev.Value)
		if err != nil {
			return err
		}
		return s.store.Change(ev.Field, value)
	case EventBlur:
		return s.store.Blur(ev.Field)
	case EventSubmit:
		return s.store.Submit(func(d registration.Draft) {
			s.submit.Handle(d)
			releasePhoto(s.uploads, d)
		})
	case EventReset:
		s.store.Reset()
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, ev.Type)
	}
}

// decodeValue converts the JSON value of a change event into the Go value
// the form expects. The photo field carries an upload temp ID.
func (s *Session) decodeValue(field string, raw json.RawMessage) (any, error) {
	if f, ok := registration.Lookup(field); ok && f.Control == registration.ControlFile {
		var tempID string
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &tempID); err != nil && string(raw) != "null" {
				return nil, fmt.Errorf("%w: photo must be an upload id", ErrInvalidMessage)
			}
		}
		if tempID == "" {
			return (*upload.File)(nil), nil
		}
		return s.uploads.Lookup(tempID)
	}

	if len(raw) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return value, nil
}

// releasePhoto drops the upload reference of an accepted draft.
func releasePhoto(store upload.Store, d registration.Draft) {
	if d.Photo != nil {
		store.Claim(d.Photo.ID)
	}
}

func (s *Session) sendField(v form.FieldView) {
	s.queue(Message{
		Type:   MessageField,
		Field:  v.Field,
		Value:  v.Value,
		Error:  v.Error,
		Status: v.Status.String(),
	})
}

// queue encodes msg and hands it to the write loop. A client that does not
// keep up is disconnected.
func (s *Session) queue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("message encode error", "type", msg.Type, "error", err)
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- data:
	default:
		s.logger.Warn("closing session", "error", ErrSendQueueFull, "queued", len(s.send))
		s.Close()
	}
}

// ReadLoop reads client messages until the connection fails or the session
// closes. It closes the session on return.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		s.touch()
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		ev, err := decodeEvent(msg)
		if err != nil {
			s.logger.Debug("event decode error", "error", err)
			s.queue(Message{Type: MessageError, Message: err.Error()})
			continue
		}

		s.reportError(ev, s.Handle(ev))
	}
}

// reportError tells the client about errors that are not form outcomes.
// A rejected or invalid submit is already visible through field and
// submitting messages.
func (s *Session) reportError(ev *Event, err error) {
	if err == nil || errors.Is(err, form.ErrInvalid) || errors.Is(err, form.ErrSubmitting) {
		return
	}
	s.logger.Debug("event rejected", "type", ev.Type, "field", ev.Field, "error", err)
	s.queue(Message{Type: MessageError, Field: ev.Field, Message: err.Error()})
}

// WriteLoop writes queued messages and heartbeat pings until the session
// closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write error", "error", err)
				s.Close()
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping error", "error", err)
				s.Close()
				return
			}

		case <-s.done:
			if s.conn != nil {
				deadline := time.Now().Add(time.Second)
				s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), deadline)
			}
			return
		}
	}
}

// Close ends the session. It is safe to call more than once and from any
// goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.toasts.Close()
		if s.conn != nil {
			// Let WriteLoop send the close frame before the socket goes away.
			time.AfterFunc(time.Second, func() { s.conn.Close() })
		}
		if s.onClose != nil {
			s.onClose(s)
		}
		s.logger.Debug("session closed", "events", s.eventCount.Load())
	})
}
