// Package errors provides coded, actionable error messages for regform's
// configuration loader and command line.
//
// Each error has a unique code (e.g., "E101") that maps to a category, a
// short message, and a longer explanation. Call sites add detail, a
// suggestion, and the wrapped cause:
//
//	err := errors.New("E101").
//	    WithDetail("open regform.yaml: permission denied").
//	    WithSuggestion("Check the file permissions").
//	    Wrap(cause)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E101: Failed to read configuration file
//	//
//	//   open regform.yaml: permission denied
//	//
//	//   Hint: Check the file permissions
//
// Validation failures of the registration form are not reported through this
// package; see package form.
package errors
