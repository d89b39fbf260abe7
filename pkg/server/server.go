package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/regform/internal/registration"
	"github.com/vango-dev/regform/pkg/form"
	"github.com/vango-dev/regform/pkg/upload"
)

// Route paths.
const (
	PathPage       = "/"
	PathLive       = "/_regform/live"
	PathUpload     = "/_regform/upload"
	PathThinClient = "/_regform/client.js"
	PathHealth     = "/healthz"
)

// Server is the HTTP/WebSocket server for the registration form.
type Server struct {
	config   *ServerConfig
	form     *form.Form[registration.Draft]
	uploads  *upload.MemoryStore
	sessions *SessionManager

	upgrader       websocket.Upgrader
	middleware     []EventMiddleware
	observers      []SessionObserver
	metricsHandler http.Handler

	// baseCtx is the parent of every session context.
	baseCtx    context.Context
	cancelBase context.CancelFunc

	handlerOnce sync.Once
	handler     http.Handler
	httpServer  *http.Server
	startedAt   time.Time

	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEventMiddleware appends middleware to the live event chain.
func WithEventMiddleware(mw ...EventMiddleware) Option {
	return func(s *Server) { s.middleware = append(s.middleware, mw...) }
}

// WithSessionObserver registers observers of session lifecycle.
func WithSessionObserver(o ...SessionObserver) Option {
	return func(s *Server) { s.observers = append(s.observers, o...) }
}

// WithMetricsHandler mounts h at the configured metrics path.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server with the given configuration.
func New(config *ServerConfig, opts ...Option) *Server {
	config = config.withDefaults()

	s := &Server{
		config:    config,
		form:      registration.NewForm(),
		uploads:   upload.NewMemoryStore(config.Upload.MaxFileSize, config.Upload.TempExpiry),
		logger:    slog.Default(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())
	s.sessions = NewSessionManager(s.logger, s.observers...)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}

	go s.uploads.Run(s.baseCtx, time.Minute)
	return s
}

// Handler returns the HTTP handler serving every route.
//
// It can be mounted in another router:
//
//	r := chi.NewRouter()
//	r.Mount("/register", srv.Handler())
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		r := chi.NewRouter()
		r.Use(chimw.RequestID)
		r.Use(chimw.RealIP)
		r.Use(requestLogger(s.logger))
		r.Use(chimw.Recoverer)

		r.Get(PathPage, s.servePage)
		r.Post(PathPage, s.serveFallbackSubmit)
		r.Get(PathLive, s.HandleWebSocket)
		r.Method(http.MethodPost, PathUpload, upload.HandlerWithConfig(s.uploads, s.config.Upload))
		r.Get(PathThinClient, s.serveClientScript)
		r.Head(PathThinClient, s.serveClientScript)
		r.Get(PathHealth, s.serveHealth)
		if s.metricsHandler != nil {
			r.Method(http.MethodGet, s.config.MetricsPath, s.metricsHandler)
		}
		s.handler = r
	})
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is done, SIGINT or SIGTERM is
// received, or the listener fails. It then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by http.Server.
	s.sessions.Shutdown()
	s.cancelBase()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server stopped")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Uploads returns the upload store.
func (s *Server) Uploads() *upload.MemoryStore {
	return s.uploads
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// requestLogger logs each HTTP request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", chimw.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// sameOrigin accepts upgrades without an Origin header or whose Origin host
// matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
