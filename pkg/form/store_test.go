package form

import (
	"errors"
	"testing"
)

func TestStoreSubscribeOnlyChangedField(t *testing.T) {
	s := NewStore(newSignupForm())

	var nameViews, passwordViews []FieldView
	s.Subscribe("name", func(v FieldView) { nameViews = append(nameViews, v) })
	s.Subscribe("password", func(v FieldView) { passwordViews = append(passwordViews, v) })

	if err := s.Change("name", "Al"); err != nil {
		t.Fatalf("Change() error: %v", err)
	}
	if len(nameViews) != 1 {
		t.Fatalf("name notified %d times, want 1", len(nameViews))
	}
	if len(passwordViews) != 0 {
		t.Errorf("password notified %d times, want 0", len(passwordViews))
	}

	got := nameViews[0]
	if got.Value != "Al" || got.Error != "Name must be at least 3 characters" || got.Status != StatusTouched {
		t.Errorf("unexpected view: %+v", got)
	}

	// Same value, same error, same status: nothing to deliver.
	if err := s.Change("name", "Al"); err != nil {
		t.Fatalf("Change() error: %v", err)
	}
	if len(nameViews) != 1 {
		t.Errorf("unchanged view delivered again")
	}
}

func TestStoreNotifiesDependents(t *testing.T) {
	s := NewStore(newSignupForm())
	_ = s.Change("password", "longenough1")
	_ = s.Change("confirm", "longenough1")

	var confirmViews []FieldView
	s.Subscribe("confirm", func(v FieldView) { confirmViews = append(confirmViews, v) })

	_ = s.Change("password", "somethingelse")
	if len(confirmViews) != 1 {
		t.Fatalf("confirm notified %d times, want 1", len(confirmViews))
	}
	if confirmViews[0].Error != "Passwords must match" {
		t.Errorf("confirm error = %q", confirmViews[0].Error)
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	s := NewStore(newSignupForm())

	calls := 0
	unsubscribe := s.Subscribe("name", func(FieldView) { calls++ })
	_ = s.Change("name", "A")
	unsubscribe()
	_ = s.Change("name", "Ada")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStoreBlurShowsError(t *testing.T) {
	s := NewStore(newSignupForm())

	if v := s.View("name"); v.Error != "" {
		t.Fatalf("pristine error visible: %q", v.Error)
	}
	if err := s.Blur("name"); err != nil {
		t.Fatalf("Blur() error: %v", err)
	}
	if v := s.View("name"); v.Error != "Name is required" {
		t.Errorf("error after blur = %q", v.Error)
	}
	if err := s.Blur("missing"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Blur(missing) error = %v", err)
	}
}

func TestStoreSubmitInvalid(t *testing.T) {
	s := NewStore(newSignupForm())

	called := false
	err := s.Submit(func(testSignup) { called = true })
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Submit() error = %v, want ErrInvalid", err)
	}
	if called {
		t.Error("handler called for invalid draft")
	}
	if v := s.View("agree"); v.Error != "You must agree" || v.Status != StatusSubmitted {
		t.Errorf("agree view after submit = %+v", v)
	}
}

func fillValid(t *testing.T, s *Store[testSignup]) {
	t.Helper()
	v := validSignup()
	for field, value := range map[string]any{
		"name":     v.Name,
		"password": v.Password,
		"confirm":  v.Confirm,
		"agree":    v.Agree,
		"avatar":   v.Avatar,
	} {
		if err := s.Change(field, value); err != nil {
			t.Fatalf("Change(%q) error: %v", field, err)
		}
	}
	if !s.State().IsValid() {
		t.Fatalf("draft should be valid: %v", s.State().Errors)
	}
}

func TestStoreSubmitValid(t *testing.T) {
	s := NewStore(newSignupForm())
	fillValid(t, s)

	var flags []bool
	s.SubscribeSubmitting(func(b bool) { flags = append(flags, b) })

	var got []testSignup
	err := s.Submit(func(v testSignup) {
		if !s.State().Submitting {
			t.Error("handler should run while submitting")
		}
		got = append(got, v)
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if len(got) != 1 || got[0].Name != "Ada" {
		t.Fatalf("handler calls = %+v", got)
	}
	if len(flags) != 2 || !flags[0] || flags[1] {
		t.Errorf("submitting notifications = %v, want [true false]", flags)
	}

	st := s.State()
	if st.Values != (testSignup{}) || st.SubmitCount != 0 || st.Submitting || len(st.Touched) != 0 {
		t.Errorf("store not reset after submit: %+v", st)
	}
	if v := s.View("name"); v.Error != "" {
		t.Errorf("error visible after reset: %q", v.Error)
	}
}

func TestStoreSubmitReentrant(t *testing.T) {
	s := NewStore(newSignupForm())
	fillValid(t, s)

	handled := 0
	var inner error
	err := s.Submit(func(testSignup) {
		handled++
		inner = s.Submit(func(testSignup) { handled++ })
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if !errors.Is(inner, ErrSubmitting) {
		t.Errorf("nested Submit() error = %v, want ErrSubmitting", inner)
	}
	if handled != 1 {
		t.Errorf("handler ran %d times, want 1", handled)
	}
}

func TestStoreReset(t *testing.T) {
	s := NewStore(newSignupForm())
	_ = s.Change("name", "Al")

	var views []FieldView
	s.Subscribe("name", func(v FieldView) { views = append(views, v) })
	s.Reset()

	if len(views) != 1 {
		t.Fatalf("name notified %d times, want 1", len(views))
	}
	if views[0].Value != "" || views[0].Error != "" || views[0].Status != StatusPristine {
		t.Errorf("view after reset = %+v", views[0])
	}
}

func TestStoreStateIsCopy(t *testing.T) {
	s := NewStore(newSignupForm())

	st := s.State()
	st.Touched["name"] = true
	st.Errors["name"] = "tampered"

	if s.State().Touched["name"] || s.State().Errors["name"] != "Name is required" {
		t.Error("State() exposed internal maps")
	}
}
