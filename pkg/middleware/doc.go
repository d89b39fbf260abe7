// Package middleware provides observability middleware for live form
// sessions.
//
// This package includes:
//   - OpenTelemetry tracing of form events
//   - Prometheus metrics for events, submissions, and sessions
//
// Both are server.EventMiddleware values installed with
// server.WithEventMiddleware. They run around every decoded client event,
// in the order given.
//
// # OpenTelemetry Middleware
//
//	srv := server.New(cfg,
//	    server.WithEventMiddleware(middleware.OpenTelemetry()),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("signup"),
//	    middleware.WithEventFilter(func(ev *server.Event) bool {
//	        return ev.Type != server.EventBlur
//	    }),
//	)
//
// The span context is passed to the rest of the chain, so
// trace.SpanFromContext works in later middleware.
//
// # Prometheus Metrics
//
// NewMetrics registers the collectors and doubles as a session observer:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	srv := server.New(cfg,
//	    server.WithEventMiddleware(m.Middleware()),
//	    server.WithSessionObserver(m),
//	    server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
//	)
package middleware
