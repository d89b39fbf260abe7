// Package form provides type-safe form state with declarative validation.
//
// # Overview
//
// A Form[T] describes the fields of a struct T (named by `form` struct tags)
// and the rules each field must satisfy. It owns no state: every operation
// takes a State[T] and returns the next one, so the validation engine stays
// pure and independently testable.
//
//	type Signup struct {
//	    Email    string `form:"email"`
//	    Password string `form:"password"`
//	    Confirm  string `form:"confirm"`
//	}
//
//	f := form.New(Signup{}).
//	    Rule("email", form.Required("Email is required"), form.Email("Invalid email address")).
//	    Rule("password", form.Required("Password is required"), form.MinLength(8, "")).
//	    Rule("confirm", form.Required(""), form.EqualTo("password", "Passwords must match"))
//
//	st := f.Initial()
//	st, _ = f.Change(st, "email", "ada@example.com")
//	st, _ = f.Blur(st, "email")
//	st, err := f.Submit(st) // errors.Is(err, form.ErrInvalid) until every rule passes
//
// # Validation
//
// Rules run in declaration order and the first failing validator of a field
// wins, so every field has at most one message. Validators never return
// invalidity through panics; they return a ValidationError which the form
// collects into Errors.
//
// Cross-field validators such as EqualTo implement FieldComparer and declare
// the fields they read. Changing a depended-upon field re-validates its
// dependents, so "confirm" is re-checked whenever "password" changes.
//
// # Field Status
//
// Each field is pristine until the first change or blur, then touched. A
// submit attempt moves every field into the submitted status. Errors are
// visible (State.VisibleError) only for touched or submitted fields.
//
// # Store
//
// Store[T] wraps a State[T] for one interactive session and notifies
// subscribers of exactly the field slices (value, visible error, status) that
// changed after each transition. Store.Submit guards against re-entrant
// submissions with the Submitting flag.
package form
