package form

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

var (
	// ErrUnknownField is returned when a transition names a field the form
	// does not declare.
	ErrUnknownField = errors.New("form: unknown field")

	// ErrTypeMismatch is returned when a value cannot be assigned to a field.
	ErrTypeMismatch = errors.New("form: value type mismatch")

	// ErrInvalid is returned by Submit when at least one field is invalid.
	ErrInvalid = errors.New("form: validation failed")

	// ErrSubmitting is returned by Submit while a submission is in flight.
	ErrSubmitting = errors.New("form: submission in progress")
)

// Form declares the fields of T and the rules they must satisfy.
// A Form is immutable once its rules are declared and may be shared by any
// number of sessions.
type Form[T any] struct {
	initial    T
	fields     []string
	fieldMeta  map[string]fieldMeta
	validators map[string][]Validator
	dependents map[string][]string
}

// fieldMeta stores metadata extracted from struct tags.
type fieldMeta struct {
	formTag    string
	fieldType  reflect.Type
	fieldIndex int
}

// New creates a Form for the struct type of initial.
// The initial value is the draft every session starts from and resets to.
//
// Fields are named by their `form` tag, or the lowercased Go name when the
// tag is absent; `form:"-"` and unexported fields are skipped.
func New[T any](initial T) *Form[T] {
	f := &Form[T]{
		initial:    initial,
		fieldMeta:  make(map[string]fieldMeta),
		validators: make(map[string][]Validator),
		dependents: make(map[string][]string),
	}
	f.parseStructTags(reflect.TypeOf(initial))
	return f
}

// parseStructTags extracts field names from the form tags of t.
func (f *Form[T]) parseStructTags(t reflect.Type) {
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("form: New requires a struct, got %v", t))
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		formTag := field.Tag.Get("form")
		if formTag == "" {
			formTag = strings.ToLower(field.Name)
		}
		if formTag == "-" {
			continue
		}

		f.fields = append(f.fields, formTag)
		f.fieldMeta[formTag] = fieldMeta{
			formTag:    formTag,
			fieldType:  field.Type,
			fieldIndex: i,
		}
	}
}

// Rule appends validators to field and returns the form for chaining.
// It panics if field, or a field a FieldComparer depends on, is not declared;
// rules are built once at startup, like regexp.MustCompile.
func (f *Form[T]) Rule(field string, validators ...Validator) *Form[T] {
	if !f.Has(field) {
		panic(fmt.Sprintf("form: rule for undeclared field %q", field))
	}
	for _, v := range validators {
		c, ok := v.(FieldComparer)
		if !ok {
			continue
		}
		for _, dep := range c.DependsOn() {
			if !f.Has(dep) {
				panic(fmt.Sprintf("form: field %q depends on undeclared field %q", field, dep))
			}
			if !slices.Contains(f.dependents[dep], field) {
				f.dependents[dep] = append(f.dependents[dep], field)
			}
		}
	}
	f.validators[field] = append(f.validators[field], validators...)
	return f
}

// Fields returns the declared field names in struct order.
func (f *Form[T]) Fields() []string {
	return slices.Clone(f.fields)
}

// Has reports whether field is declared.
func (f *Form[T]) Has(field string) bool {
	_, ok := f.fieldMeta[field]
	return ok
}

// Dependents returns the fields whose rules read field.
func (f *Form[T]) Dependents(field string) []string {
	return slices.Clone(f.dependents[field])
}

// Get returns the value of a single field of values, or nil if the field is
// not declared.
func (f *Form[T]) Get(values T, field string) any {
	meta, ok := f.fieldMeta[field]
	if !ok {
		return nil
	}
	return reflect.ValueOf(values).Field(meta.fieldIndex).Interface()
}

// set assigns value to field of values. A nil value assigns the zero value.
func (f *Form[T]) set(values *T, field string, value any) error {
	meta, ok := f.fieldMeta[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	fieldValue := reflect.ValueOf(values).Elem().Field(meta.fieldIndex)

	if value == nil {
		fieldValue.Set(reflect.Zero(meta.fieldType))
		return nil
	}

	newValue := reflect.ValueOf(value)
	switch {
	case newValue.Type().AssignableTo(meta.fieldType):
		fieldValue.Set(newValue)
	case newValue.Kind() == meta.fieldType.Kind() && newValue.Type().ConvertibleTo(meta.fieldType):
		fieldValue.Set(newValue.Convert(meta.fieldType))
	default:
		return fmt.Errorf("%w: field %q wants %s, got %T", ErrTypeMismatch, field, meta.fieldType, value)
	}
	return nil
}

// boundValues exposes one draft to FieldComparer validators.
type boundValues[T any] struct {
	form   *Form[T]
	values T
}

func (b boundValues[T]) Get(field string) any {
	return b.form.Get(b.values, field)
}

// ValidateField runs the rules of field against values and returns the
// message of the first failure, or "" when the field is valid.
func (f *Form[T]) ValidateField(values T, field string) string {
	validators := f.validators[field]
	if len(validators) == 0 {
		return ""
	}

	value := f.Get(values, field)
	for _, v := range validators {
		var err error
		if c, ok := v.(FieldComparer); ok {
			err = c.ValidateWith(value, boundValues[T]{form: f, values: values})
		} else {
			err = v.Validate(value)
		}
		if err != nil {
			return messageOf(err)
		}
	}
	return ""
}

// Validate runs every rule and returns the error mapping for values.
func (f *Form[T]) Validate(values T) Errors {
	errs := make(Errors)
	for _, field := range f.fields {
		if msg := f.ValidateField(values, field); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// Initial returns the state a session starts in: the initial draft, its
// error mapping, no touched fields and no submit attempts.
func (f *Form[T]) Initial() State[T] {
	return State[T]{
		Values:  f.initial,
		Errors:  f.Validate(f.initial),
		Touched: make(map[string]bool),
	}
}

// Reset returns the initial state. It is equivalent to Initial.
func (f *Form[T]) Reset() State[T] {
	return f.Initial()
}

// Change sets field to value, marks it touched and re-validates the field
// together with every field whose rules depend on it.
func (f *Form[T]) Change(s State[T], field string, value any) (State[T], error) {
	if !f.Has(field) {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	next := s.clone()
	if err := f.set(&next.Values, field, value); err != nil {
		return s, err
	}
	next.Touched[field] = true

	f.revalidate(&next, field)
	for _, dep := range f.dependents[field] {
		f.revalidate(&next, dep)
	}
	return next, nil
}

// Blur marks field touched and re-validates it.
func (f *Form[T]) Blur(s State[T], field string) (State[T], error) {
	if !f.Has(field) {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	next := s.clone()
	next.Touched[field] = true
	f.revalidate(&next, field)
	return next, nil
}

// Submit records a submit attempt and re-validates every field.
//
// It returns ErrSubmitting, with s unchanged, while s.Submitting is set.
// It returns ErrInvalid, with the submitted state, if any field fails.
// Otherwise the returned state has Submitting set; the caller handles the
// values and then calls Finish.
func (f *Form[T]) Submit(s State[T]) (State[T], error) {
	if s.Submitting {
		return s, ErrSubmitting
	}

	next := s.clone()
	next.SubmitCount++
	next.Errors = f.Validate(next.Values)
	if len(next.Errors) > 0 {
		return next, ErrInvalid
	}
	next.Submitting = true
	return next, nil
}

// Finish returns the state that follows an accepted submission.
// Nothing from the submitted state carries over.
func (f *Form[T]) Finish() State[T] {
	return f.Initial()
}

// View returns the slice of s that a single bound input needs.
func (f *Form[T]) View(s State[T], field string) FieldView {
	return FieldView{
		Field:  field,
		Value:  f.Get(s.Values, field),
		Error:  s.VisibleError(field),
		Status: s.Status(field),
	}
}

// revalidate refreshes the error entry of one field in place.
func (f *Form[T]) revalidate(s *State[T], field string) {
	if msg := f.ValidateField(s.Values, field); msg != "" {
		s.Errors[field] = msg
	} else {
		delete(s.Errors, field)
	}
}
