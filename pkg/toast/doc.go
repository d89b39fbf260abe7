// Package toast provides the transient notifications of a form session.
//
// A Center keeps the notifications currently on screen and dismisses each one
// after a fixed duration. It does not render anything itself: every show and
// dismissal is handed to an Emitter, which for a live session forwards the
// event to the browser over its WebSocket.
//
// # Client-Side Handler
//
// The thin client dispatches each notification as a DOM CustomEvent, so the
// page may use any toast UI:
//
//	window.addEventListener("regform:toast", (e) => {
//	    const { id, level, message } = e.detail;
//	    showToast(id, level, message);
//	});
//	window.addEventListener("regform:toast-dismiss", (e) => {
//	    hideToast(e.detail.id);
//	});
//
// # Server-Side Usage
//
// Code that only needs to raise a notification depends on Notifier:
//
//	func (s *Submitter) Handle(d Draft) {
//	    toast.Success(s.notifier, "Form Submitted")
//	}
//
// The session owns the Center:
//
//	center := toast.NewCenter(session, toast.WithDuration(5*time.Second))
//	defer center.Close()
package toast
