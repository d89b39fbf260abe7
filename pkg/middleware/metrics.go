package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/regform/pkg/form"
	"github.com/vango-dev/regform/pkg/server"
	"github.com/vango-dev/regform/pkg/upload"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "regform").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "regform",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Submission results recorded by submissions_total.
const (
	SubmissionAccepted = "accepted"
	SubmissionInvalid  = "invalid"
	SubmissionRejected = "rejected"
)

// Metrics holds the Prometheus collectors for live form sessions.
//
// Metrics collected:
//   - regform_events_total: Counter of events by type and status
//   - regform_event_duration_seconds: Histogram of event processing duration
//   - regform_event_errors_total: Counter of event errors by type and error type
//   - regform_submissions_total: Counter of submit attempts by result
//   - regform_active_sessions: Gauge of live sessions
//   - regform_sessions_total: Counter of sessions opened
//
// A Metrics is also a server.SessionObserver.
type Metrics struct {
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	eventErrors    *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of form events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_errors_total",
			Help:        "Total number of event processing errors",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "error_type"}),

		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submissions_total",
			Help:        "Total number of submit attempts by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live form sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_total",
			Help:        "Total number of live form sessions opened",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware returns event middleware recording event metrics.
//
// Example:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	srv := server.New(cfg,
//	    server.WithEventMiddleware(m.Middleware()),
//	    server.WithSessionObserver(m),
//	    server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
//	)
func (m *Metrics) Middleware() server.EventMiddleware {
	return func(next server.EventHandler) server.EventHandler {
		return func(ctx context.Context, ev *server.Event) error {
			eventType := string(ev.Type)

			start := time.Now()
			err := next(ctx, ev)
			m.eventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
				m.eventErrors.WithLabelValues(eventType, categorizeError(err)).Inc()
			}
			m.eventsTotal.WithLabelValues(eventType, status).Inc()

			if ev.Type == server.EventSubmit {
				m.submissions.WithLabelValues(submissionResult(err)).Inc()
			}
			return err
		}
	}
}

// SessionOpened implements server.SessionObserver.
func (m *Metrics) SessionOpened(string) {
	m.activeSessions.Inc()
	m.sessionsTotal.Inc()
}

// SessionClosed implements server.SessionObserver.
func (m *Metrics) SessionClosed(string) {
	m.activeSessions.Dec()
}

// Prometheus creates event middleware backed by a new Metrics.
// Use NewMetrics directly to also track sessions.
func Prometheus(opts ...MetricsOption) server.EventMiddleware {
	return NewMetrics(opts...).Middleware()
}

func submissionResult(err error) string {
	switch {
	case err == nil:
		return SubmissionAccepted
	case errors.Is(err, form.ErrSubmitting):
		return SubmissionRejected
	default:
		return SubmissionInvalid
	}
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, form.ErrInvalid):
		return "validation"
	case errors.Is(err, form.ErrSubmitting):
		return "in_flight"
	case errors.Is(err, form.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, form.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, upload.ErrNotFound), errors.Is(err, upload.ErrExpired):
		return "upload"
	case errors.Is(err, server.ErrInvalidMessage):
		return "invalid_message"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal"
	}
}
