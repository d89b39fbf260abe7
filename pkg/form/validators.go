package form

import (
	"fmt"
	"mime"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validator is an interface for form field validation.
type Validator interface {
	// Validate checks if the value is valid.
	// Returns nil if valid, or an error with a message if invalid.
	Validate(value any) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value any) error

func (f ValidatorFunc) Validate(value any) error {
	return f(value)
}

// Values gives read access to the other fields of the form being validated.
type Values interface {
	Get(field string) any
}

// FieldComparer is a validator whose outcome depends on other fields.
// The form re-runs it whenever one of the fields in DependsOn changes.
type FieldComparer interface {
	Validator
	DependsOn() []string
	ValidateWith(value any, values Values) error
}

// MediaTyper is implemented by file references that carry a declared
// content type.
type MediaTyper interface {
	MediaType() string
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// tagValidate backs Tag. validator.Validate is safe for concurrent use.
var tagValidate = validator.New()

// ----------------------------------------------------------------------------
// Presence
// ----------------------------------------------------------------------------

// Required validates that the value is non-empty.
// Only "" and nil count as empty; wrap with Trim to reject whitespace.
func Required(msg string) Validator {
	if msg == "" {
		msg = "This field is required"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// True validates that the value is the boolean true.
func True(msg string) Validator {
	if msg == "" {
		msg = "Must be accepted"
	}
	return ValidatorFunc(func(value any) error {
		if b, ok := value.(bool); ok && b {
			return nil
		}
		return ValidationError{Message: msg}
	})
}

// ----------------------------------------------------------------------------
// String Validators
// ----------------------------------------------------------------------------

// MinLength validates that a string has at least n characters.
func MinLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil // Let Required handle empty values
		}
		if utf8.RuneCountInString(s) < n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MaxLength validates that a string has at most n characters.
func MaxLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		if utf8.RuneCountInString(toString(value)) > n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Pattern validates that a string matches the given regular expression.
func Pattern(pattern string, msg string) Validator {
	re := regexp.MustCompile(pattern)
	if msg == "" {
		msg = "Invalid format"
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Email validates that the value is a syntactically valid email address.
func Email(msg string) Validator {
	if msg == "" {
		msg = "Invalid email address"
	}
	return Tag("email", msg)
}

// Tag validates the value against a go-playground/validator tag such as
// "email", "numeric,len=10" or "oneof=red green". Empty values pass.
func Tag(tag string, msg string) Validator {
	if msg == "" {
		msg = "Invalid value"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return nil
		}
		if err := tagValidate.Var(value, tag); err != nil {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// OneOf validates that the value equals one of the options.
// Unlike the other validators, an empty value fails.
func OneOf(msg string, options ...string) Validator {
	if msg == "" {
		msg = "Must be one of " + strings.Join(options, ", ")
	}
	return ValidatorFunc(func(value any) error {
		s, ok := value.(string)
		if !ok || !slices.Contains(options, s) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Date validates that a string parses as a calendar date in the given layout.
// time.Parse rejects out-of-range days, so "2023-02-30" fails.
func Date(layout string, msg string) Validator {
	if msg == "" {
		msg = "Invalid date"
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if _, err := time.Parse(layout, s); err != nil {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Trim applies v to string values with surrounding whitespace removed.
func Trim(v Validator) Validator {
	return ValidatorFunc(func(value any) error {
		if s, ok := value.(string); ok {
			return v.Validate(strings.TrimSpace(s))
		}
		return v.Validate(value)
	})
}

// ----------------------------------------------------------------------------
// File Validators
// ----------------------------------------------------------------------------

// AcceptTypes validates that a file reference declares one of the given
// media types. Parameters such as "; charset=" are ignored. Empty values pass.
func AcceptTypes(msg string, types ...string) Validator {
	if msg == "" {
		msg = "Unsupported file type"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return nil
		}
		mt, ok := value.(MediaTyper)
		if !ok {
			return ValidationError{Message: msg}
		}
		declared, _, err := mime.ParseMediaType(mt.MediaType())
		if err != nil {
			return ValidationError{Message: msg}
		}
		for _, t := range types {
			if strings.EqualFold(declared, t) {
				return nil
			}
		}
		return ValidationError{Message: msg}
	})
}

// ----------------------------------------------------------------------------
// Comparison Validators
// ----------------------------------------------------------------------------

// EqualToField checks that the value equals the live value of another field.
type EqualToField struct {
	Field   string
	Message string
}

// EqualTo returns a validator that requires the value to equal field.
func EqualTo(field string, msg string) *EqualToField {
	if msg == "" {
		msg = fmt.Sprintf("Must match %s", field)
	}
	return &EqualToField{Field: field, Message: msg}
}

// Validate passes: the comparison needs the other field, see ValidateWith.
func (e *EqualToField) Validate(value any) error {
	return nil
}

// DependsOn implements FieldComparer.
func (e *EqualToField) DependsOn() []string {
	return []string{e.Field}
}

// ValidateWith implements FieldComparer.
func (e *EqualToField) ValidateWith(value any, values Values) error {
	if !reflect.DeepEqual(value, values.Get(e.Field)) {
		return ValidationError{Message: e.Message}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Custom Validators
// ----------------------------------------------------------------------------

// Custom creates a validator from a custom function.
func Custom(fn func(value any) error) Validator {
	return ValidatorFunc(fn)
}

// ----------------------------------------------------------------------------
// Helper Functions
// ----------------------------------------------------------------------------

// isEmpty checks if a value is considered empty.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	case bool:
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// toString converts a value to a string.
func toString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// messageOf extracts the user-facing message from a validator error.
func messageOf(err error) string {
	if ve, ok := err.(ValidationError); ok {
		return ve.Message
	}
	return err.Error()
}
