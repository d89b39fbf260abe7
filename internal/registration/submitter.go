package registration

import (
	"log/slog"

	"github.com/vango-dev/regform/pkg/toast"
)

// SuccessMessage is the notification shown for an accepted submission.
const SuccessMessage = "Form Submitted"

// Submitter handles accepted registrations. It transmits nothing and
// stores nothing: an accepted draft is acknowledged and logged.
type Submitter struct {
	notifier toast.Notifier
	logger   *slog.Logger
}

// NewSubmitter creates a Submitter reporting to n. A nil logger uses the
// default logger.
func NewSubmitter(n toast.Notifier, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		notifier: n,
		logger:   logger.With("component", "registration"),
	}
}

// Handle acknowledges an accepted draft. It is the handler passed to
// form.Store.Submit.
func (s *Submitter) Handle(d Draft) {
	toast.Success(s.notifier, SuccessMessage)
	s.logger.Info("registration submitted", "draft", d)
}
