// Package server serves the registration form.
//
// GET / renders the page from a fresh form state. The thin client then opens
// a WebSocket to /_regform/live, which creates a Session owning one
// form.Store and one toast.Center. Every change, blur, submit and reset the
// browser sends is applied to that store on the session's read goroutine,
// and the field slices that actually changed are written back as JSON
// messages. A page without JavaScript posts the form to POST / instead and
// gets the re-rendered page.
//
// # Wire Messages
//
// Client to server:
//
//	{"type": "change", "field": "email", "value": "ada@example.com"}
//	{"type": "blur", "field": "email"}
//	{"type": "submit"}
//	{"type": "reset"}
//
// Server to client:
//
//	{"type": "hello", "session": "..."}
//	{"type": "field", "field": "email", "value": "...", "error": "...", "status": "touched"}
//	{"type": "submitting", "submitting": true}
//	{"type": "toast", "toast": {"id": "...", "level": "success", "message": "Form Submitted"}}
//	{"type": "toast_dismiss", "toast": {"id": "..."}}
//	{"type": "error", "message": "..."}
//
// Absent value, error and submitting keys mean "", "" and false.
//
// # Event Middleware
//
// Live events pass through a chain of EventMiddleware before they reach the
// store, which is where package middleware attaches metrics and tracing:
//
//	srv := server.New(cfg,
//	    server.WithEventMiddleware(middleware.OpenTelemetry(), metrics.Middleware()),
//	)
package server
