package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventName is the event name dispatched for shown toasts.
// Client-side code should listen for this event.
const EventName = "regform:toast"

// DismissEventName is the event name dispatched when a toast is removed.
const DismissEventName = "regform:toast-dismiss"

// DefaultDuration is how long a toast stays visible unless configured.
const DefaultDuration = 5 * time.Second

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return true
	}
	return false
}

// Notifier displays a transient message.
type Notifier interface {
	Display(message string, level Type)
}

// Emitter receives the events a Center produces.
type Emitter interface {
	Emit(name string, data any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(name string, data any)

// Emit calls f(name, data).
func (f EmitterFunc) Emit(name string, data any) { f(name, data) }

// Toast is a single notification.
type Toast struct {
	ID        string    `json:"id"`
	Level     Type      `json:"level"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// payload returns the event detail sent to the client.
func (t Toast) payload() map[string]any {
	data := map[string]any{
		"id":      t.ID,
		"level":   string(t.Level),
		"message": t.Message,
	}
	if t.Title != "" {
		data["title"] = t.Title
	}
	return data
}

// Timer is the part of *time.Timer a Center uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Center.
type Option func(*Center)

// WithDuration sets how long toasts stay visible. A non-positive duration
// keeps toasts until they are dismissed explicitly.
func WithDuration(d time.Duration) Option {
	return func(c *Center) { c.duration = d }
}

// WithAfterFunc replaces the timer used for auto-dismissal.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Center) { c.afterFunc = fn }
}

// WithClock replaces the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// Center tracks the visible toasts of one session.
// It is safe for concurrent use; events are emitted outside its lock.
type Center struct {
	emit      Emitter
	duration  time.Duration
	afterFunc AfterFunc
	now       func() time.Time

	mu     sync.Mutex
	active map[string]*entry
	order  []string
	closed bool
}

type entry struct {
	toast Toast
	timer Timer
}

// NewCenter creates a Center that reports to emit.
func NewCenter(emit Emitter, opts ...Option) *Center {
	c := &Center{
		emit:      emit,
		duration:  DefaultDuration,
		afterFunc: realAfterFunc,
		now:       time.Now,
		active:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Duration returns the auto-dismiss duration.
func (c *Center) Duration() time.Duration {
	return c.duration
}

// Display implements Notifier.
func (c *Center) Display(message string, level Type) {
	c.Show(Toast{Level: level, Message: message})
}

// Show displays t and schedules its dismissal. Missing ID, Level and
// CreatedAt are filled in. It returns the toast as shown; after Close it
// returns t unchanged and emits nothing.
func (c *Center) Show(t Toast) Toast {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if !t.Level.Valid() {
		t.Level = TypeInfo
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = c.now()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return t
	}
	e := &entry{toast: t}
	c.active[t.ID] = e
	c.order = append(c.order, t.ID)
	c.mu.Unlock()

	c.emit.Emit(EventName, t.payload())

	if c.duration <= 0 {
		return t
	}
	id := t.ID
	timer := c.afterFunc(c.duration, func() { c.Dismiss(id) })

	c.mu.Lock()
	if cur, ok := c.active[id]; ok && cur == e {
		e.timer = timer
		c.mu.Unlock()
		return t
	}
	c.mu.Unlock()
	timer.Stop()
	return t
}

// Dismiss removes the toast with id. It reports whether the toast was
// visible.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	e, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.active, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	c.emit.Emit(DismissEventName, map[string]any{"id": id})
	return true
}

// Active returns the visible toasts, oldest first.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Toast, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.active[id].toast)
	}
	return out
}

// Close stops all timers and drops the visible toasts without emitting
// dismissals. Later calls to Show are ignored.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.active {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	c.active = make(map[string]*entry)
	c.order = nil
	c.closed = true
}

// Show displays a toast of level through n.
func Show(n Notifier, level Type, message string) {
	n.Display(message, level)
}

// Success shows a success toast.
//
//	toast.Success(n, "Form Submitted")
func Success(n Notifier, message string) {
	Show(n, TypeSuccess, message)
}

// Error shows an error toast.
func Error(n Notifier, message string) {
	Show(n, TypeError, message)
}

// Warning shows a warning toast.
func Warning(n Notifier, message string) {
	Show(n, TypeWarning, message)
}

// Info shows an info toast.
func Info(n Notifier, message string) {
	Show(n, TypeInfo, message)
}
