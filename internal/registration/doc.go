// Package registration defines the registration form: its draft, the rules
// each field must satisfy, the controls the page renders for it, and what
// happens to an accepted submission.
package registration
