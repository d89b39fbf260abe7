package form

import (
	"errors"
	"reflect"
	"sync"
)

// FieldView is the part of a State that one bound input renders.
type FieldView struct {
	Field  string
	Value  any
	Error  string // visible error only; "" while the field is pristine
	Status Status
}

func (v FieldView) equal(o FieldView) bool {
	return v.Field == o.Field &&
		v.Error == o.Error &&
		v.Status == o.Status &&
		reflect.DeepEqual(v.Value, o.Value)
}

// Store holds the State of one interactive form session and notifies
// subscribers of the field slices each transition changes.
//
// Subscribers are called synchronously after the transition commits, outside
// the store lock, so they may read the store but must not block.
type Store[T any] struct {
	form *Form[T]

	mu    sync.Mutex
	state State[T]

	nextSubID  uint64
	fieldSubs  map[string]map[uint64]func(FieldView)
	submitSubs map[uint64]func(bool)
}

// NewStore creates a store in the initial state of f.
func NewStore[T any](f *Form[T]) *Store[T] {
	return &Store[T]{
		form:       f,
		state:      f.Initial(),
		fieldSubs:  make(map[string]map[uint64]func(FieldView)),
		submitSubs: make(map[uint64]func(bool)),
	}
}

// Form returns the form the store validates against.
func (s *Store[T]) Form() *Form[T] {
	return s.form
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// View returns the current slice of field.
func (s *Store[T]) View(field string) FieldView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.View(s.state, field)
}

// Subscribe registers fn to receive the slice of field whenever it changes.
// The returned function removes the subscription.
func (s *Store[T]) Subscribe(field string, fn func(FieldView)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	if s.fieldSubs[field] == nil {
		s.fieldSubs[field] = make(map[uint64]func(FieldView))
	}
	s.fieldSubs[field][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fieldSubs[field], id)
	}
}

// SubscribeSubmitting registers fn to receive the Submitting flag whenever
// it changes.
func (s *Store[T]) SubscribeSubmitting(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.submitSubs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.submitSubs, id)
	}
}

// Change applies Form.Change to the current state.
func (s *Store[T]) Change(field string, value any) error {
	s.mu.Lock()
	next, err := s.form.Change(s.state, field, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	notify := s.commit(next)
	s.mu.Unlock()

	notify()
	return nil
}

// Blur applies Form.Blur to the current state.
func (s *Store[T]) Blur(field string) error {
	s.mu.Lock()
	next, err := s.form.Blur(s.state, field)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	notify := s.commit(next)
	s.mu.Unlock()

	notify()
	return nil
}

// Reset returns the store to the initial state.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	notify := s.commit(s.form.Reset())
	s.mu.Unlock()

	notify()
}

// Submit attempts a submission.
//
// If any field is invalid it returns ErrInvalid and every error becomes
// visible. If a submission is already in flight, including a re-entrant call
// from handler, it returns ErrSubmitting and changes nothing. Otherwise it
// publishes Submitting=true, calls handler with the accepted values, and
// resets the store.
func (s *Store[T]) Submit(handler func(T)) error {
	s.mu.Lock()
	next, err := s.form.Submit(s.state)
	if errors.Is(err, ErrSubmitting) {
		s.mu.Unlock()
		return err
	}
	notify := s.commit(next)
	s.mu.Unlock()

	notify()
	if err != nil {
		return err
	}

	defer func() {
		s.mu.Lock()
		notify := s.commit(s.form.Finish())
		s.mu.Unlock()

		notify()
	}()

	if handler != nil {
		handler(next.Values)
	}
	return nil
}

// commit installs next and returns a function delivering the notifications
// for every subscribed slice that changed. Callers hold s.mu.
func (s *Store[T]) commit(next State[T]) func() {
	prev := s.state
	s.state = next

	var calls []func()
	for field, subs := range s.fieldSubs {
		if len(subs) == 0 {
			continue
		}
		before := s.form.View(prev, field)
		after := s.form.View(next, field)
		if before.equal(after) {
			continue
		}
		for _, fn := range subs {
			calls = append(calls, func() { fn(after) })
		}
	}
	if prev.Submitting != next.Submitting {
		flag := next.Submitting
		for _, fn := range s.submitSubs {
			calls = append(calls, func() { fn(flag) })
		}
	}

	return func() {
		for _, call := range calls {
			call()
		}
	}
}
