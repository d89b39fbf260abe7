package form

import (
	"maps"
	"sort"
)

// Errors maps field names to the message of the first failing rule.
// Fields that satisfy all their rules are absent.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the names of the failing fields in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Status is the interaction status of a single field.
type Status uint8

const (
	// StatusPristine fields have never been changed or blurred.
	StatusPristine Status = iota
	// StatusTouched fields have been changed or blurred at least once.
	StatusTouched
	// StatusSubmitted applies to every field once a submit was attempted.
	StatusSubmitted
)

func (s Status) String() string {
	switch s {
	case StatusPristine:
		return "pristine"
	case StatusTouched:
		return "touched"
	case StatusSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the complete state of one form session. It is treated as an
// immutable value: Form operations return a new State and never modify the
// maps of the one they were given.
type State[T any] struct {
	// Values is the current draft.
	Values T

	// Errors is the validation engine's current mapping for Values.
	Errors Errors

	// Touched records fields that have been changed or blurred.
	Touched map[string]bool

	// SubmitCount is the number of submit attempts since the last reset.
	SubmitCount int

	// Submitting is true while an accepted submission is being handled.
	Submitting bool
}

// Status returns the interaction status of field.
func (s State[T]) Status(field string) Status {
	if s.SubmitCount > 0 {
		return StatusSubmitted
	}
	if s.Touched[field] {
		return StatusTouched
	}
	return StatusPristine
}

// VisibleError returns the error of field if it should be shown to the user:
// the field is touched or a submit was attempted. Otherwise it returns "".
func (s State[T]) VisibleError(field string) string {
	if s.Status(field) == StatusPristine {
		return ""
	}
	return s.Errors[field]
}

// IsValid reports whether every field satisfies its rules.
func (s State[T]) IsValid() bool {
	return len(s.Errors) == 0
}

// IsTouched reports whether field has been changed or blurred.
func (s State[T]) IsTouched(field string) bool {
	return s.Touched[field]
}

// clone returns a copy whose maps can be modified independently.
func (s State[T]) clone() State[T] {
	next := s
	next.Errors = maps.Clone(s.Errors)
	if next.Errors == nil {
		next.Errors = make(Errors)
	}
	next.Touched = maps.Clone(s.Touched)
	if next.Touched == nil {
		next.Touched = make(map[string]bool)
	}
	return next
}
