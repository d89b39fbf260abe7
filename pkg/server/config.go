package server

import (
	"net/http"
	"time"

	"github.com/vango-dev/regform/pkg/upload"
)

// SessionConfig holds configuration for individual live sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message or pong from
	// the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// SendQueue is the number of outgoing messages buffered per session.
	// A client that falls this far behind is disconnected.
	// Default: 256.
	SendQueue int

	// ToastDuration is how long notifications stay visible.
	// Default: 5 seconds.
	ToastDuration time.Duration
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024, // 64KB
		SendQueue:         256,
		ToastDuration:     5 * time.Second,
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Address is the host:port to listen on.
	// Default: "localhost:8080".
	Address string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading a whole request, including uploads.
	// Default: 15 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response.
	// Default: 15 seconds.
	WriteTimeout time.Duration

	// IdleTimeout bounds idle keep-alive connections.
	// Default: 60 seconds.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 1024 each.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin of WebSocket upgrades.
	// Default: same origin, or any origin in DevMode.
	CheckOrigin func(r *http.Request) bool

	// SessionConfig configures each live session.
	SessionConfig *SessionConfig

	// Upload configures photo intake.
	Upload *upload.Config

	// MetricsPath is where the metrics handler is mounted, if one is set.
	// Default: "/metrics".
	MetricsPath string

	// DevMode disables thin client caching and origin checks.
	DevMode bool
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           "localhost:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		SessionConfig:     DefaultSessionConfig(),
		Upload:            upload.DefaultConfig(),
		MetricsPath:       "/metrics",
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}

	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.MetricsPath == "" {
		out.MetricsPath = defaults.MetricsPath
	}
	if out.Upload == nil {
		out.Upload = defaults.Upload
	}

	sc := out.SessionConfig.Clone()
	if sc == nil {
		sc = defaults.SessionConfig
	}
	ds := defaults.SessionConfig
	if sc.ReadTimeout == 0 {
		sc.ReadTimeout = ds.ReadTimeout
	}
	if sc.WriteTimeout == 0 {
		sc.WriteTimeout = ds.WriteTimeout
	}
	if sc.HeartbeatInterval == 0 {
		sc.HeartbeatInterval = ds.HeartbeatInterval
	}
	if sc.MaxMessageSize == 0 {
		sc.MaxMessageSize = ds.MaxMessageSize
	}
	if sc.SendQueue == 0 {
		sc.SendQueue = ds.SendQueue
	}
	if sc.ToastDuration == 0 {
		sc.ToastDuration = ds.ToastDuration
	}
	out.SessionConfig = sc

	if out.CheckOrigin == nil {
		if out.DevMode {
			out.CheckOrigin = func(*http.Request) bool { return true }
		} else {
			out.CheckOrigin = sameOrigin
		}
	}
	return &out
}
