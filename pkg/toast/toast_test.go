package toast_test

import (
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/regform/pkg/toast"
)

// recorder captures emitted events for verification.
type recorder struct {
	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	name string
	data map[string]any
}

func (r *recorder) Emit(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emittedEvent{name, data.(map[string]any)})
}

func (r *recorder) all() []emittedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emittedEvent(nil), r.events...)
}

// fakeTimers records scheduled callbacks so tests can fire them.
type fakeTimers struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) toast.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	f.pending = append(f.pending, t)
	return t
}

// fire runs every timer that has not been stopped.
func (f *fakeTimers) fire() {
	f.mu.Lock()
	timers := append([]*fakeTimer(nil), f.pending...)
	f.pending = nil
	f.mu.Unlock()

	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func newCenter(opts ...toast.Option) (*toast.Center, *recorder, *fakeTimers) {
	rec := &recorder{}
	timers := &fakeTimers{}
	opts = append([]toast.Option{toast.WithAfterFunc(timers.AfterFunc)}, opts...)
	return toast.NewCenter(rec, opts...), rec, timers
}

func TestSuccess(t *testing.T) {
	c, rec, _ := newCenter()

	toast.Success(c, "Form Submitted")

	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].name != toast.EventName {
		t.Errorf("expected event name %q, got %q", toast.EventName, events[0].name)
	}
	data := events[0].data
	if data["level"] != "success" {
		t.Errorf("expected level success, got %v", data["level"])
	}
	if data["message"] != "Form Submitted" {
		t.Errorf("expected message 'Form Submitted', got %v", data["message"])
	}
	if id, _ := data["id"].(string); id == "" {
		t.Error("expected a toast id")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		show func(toast.Notifier, string)
		want string
	}{
		{toast.Success, "success"},
		{toast.Error, "error"},
		{toast.Warning, "warning"},
		{toast.Info, "info"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c, rec, _ := newCenter()
			tt.show(c, "msg")
			if got := rec.all()[0].data["level"]; got != tt.want {
				t.Errorf("expected level %s, got %v", tt.want, got)
			}
		})
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	c, _, _ := newCenter()
	shown := c.Show(toast.Toast{Level: "loud", Message: "x"})
	if shown.Level != toast.TypeInfo {
		t.Errorf("expected info, got %q", shown.Level)
	}
}

func TestShowKeepsTitleAndID(t *testing.T) {
	c, rec, _ := newCenter()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	shown := c.Show(toast.Toast{ID: "t1", Level: toast.TypeSuccess, Title: "Settings", Message: "Saved", CreatedAt: fixed})

	if shown.ID != "t1" || !shown.CreatedAt.Equal(fixed) {
		t.Errorf("unexpected toast: %+v", shown)
	}
	data := rec.all()[0].data
	if data["title"] != "Settings" || data["id"] != "t1" {
		t.Errorf("unexpected payload: %v", data)
	}
}

func TestAutoDismiss(t *testing.T) {
	c, rec, timers := newCenter(toast.WithDuration(3 * time.Second))

	shown := c.Show(toast.Toast{Level: toast.TypeSuccess, Message: "Form Submitted"})
	if len(timers.pending) != 1 || timers.pending[0].d != 3*time.Second {
		t.Fatalf("expected one 3s timer, got %+v", timers.pending)
	}
	if len(c.Active()) != 1 {
		t.Fatalf("expected 1 active toast")
	}

	timers.fire()

	if len(c.Active()) != 0 {
		t.Errorf("expected toast dismissed, %d still active", len(c.Active()))
	}
	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].name != toast.DismissEventName || events[1].data["id"] != shown.ID {
		t.Errorf("unexpected dismiss event: %+v", events[1])
	}
}

func TestDismissStopsTimer(t *testing.T) {
	c, rec, timers := newCenter()

	shown := c.Show(toast.Toast{Message: "x"})
	if !c.Dismiss(shown.ID) {
		t.Fatal("Dismiss() = false for visible toast")
	}
	if !timers.pending[0].stopped {
		t.Error("timer not stopped")
	}
	if c.Dismiss(shown.ID) {
		t.Error("second Dismiss() = true")
	}

	timers.fire()
	if n := len(rec.all()); n != 2 {
		t.Errorf("expected show and one dismiss, got %d events", n)
	}
}

func TestStickyToast(t *testing.T) {
	c, _, timers := newCenter(toast.WithDuration(0))

	c.Display("stays", toast.TypeWarning)
	if len(timers.pending) != 0 {
		t.Errorf("expected no timer for zero duration")
	}
	if len(c.Active()) != 1 {
		t.Errorf("expected toast to stay visible")
	}
}

func TestActiveOrder(t *testing.T) {
	c, _, _ := newCenter()

	c.Display("first", toast.TypeInfo)
	second := c.Show(toast.Toast{Message: "second"})
	c.Display("third", toast.TypeInfo)
	c.Dismiss(second.ID)

	active := c.Active()
	if len(active) != 2 || active[0].Message != "first" || active[1].Message != "third" {
		t.Errorf("unexpected active toasts: %+v", active)
	}
}

func TestClose(t *testing.T) {
	c, rec, timers := newCenter()

	c.Display("one", toast.TypeInfo)
	c.Close()

	if !timers.pending[0].stopped {
		t.Error("timer not stopped on Close")
	}
	if len(c.Active()) != 0 {
		t.Error("active toasts not cleared")
	}

	c.Display("late", toast.TypeInfo)
	if n := len(rec.all()); n != 1 {
		t.Errorf("expected no events after Close, got %d total", n)
	}
}

func TestRealTimerDismisses(t *testing.T) {
	done := make(chan struct{})
	emit := toast.EmitterFunc(func(name string, data any) {
		if name == toast.DismissEventName {
			close(done)
		}
	})
	c := toast.NewCenter(emit, toast.WithDuration(10*time.Millisecond))
	defer c.Close()

	c.Display("quick", toast.TypeInfo)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("toast was not dismissed")
	}
}
