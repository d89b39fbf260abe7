package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/vango-dev/regform/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "regform.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "REGFORM_"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"
)

// Config represents the complete regform configuration.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `koanf:"server"`

	// Toast contains notification settings.
	Toast ToastConfig `koanf:"toast"`

	// Upload contains photo upload settings.
	Upload UploadConfig `koanf:"upload"`

	// Log contains logging settings.
	Log LogConfig `koanf:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `koanf:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `koanf:"tracing"`

	// DevMode relaxes WebSocket origin checks and enables debug logging.
	DevMode bool `koanf:"dev_mode"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ToastConfig contains notification settings.
type ToastConfig struct {
	// Duration is how long a notification stays visible.
	Duration time.Duration `koanf:"duration"`
}

// UploadConfig contains photo upload settings.
type UploadConfig struct {
	// MaxSize is the largest accepted file in bytes.
	MaxSize int64 `koanf:"max_size"`

	// TTL is how long an upload reference stays valid.
	TTL time.Duration `koanf:"ttl"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Toast: ToastConfig{
			Duration: 5 * time.Second,
		},
		Upload: UploadConfig{
			MaxSize: 5 * 1024 * 1024,
			TTL:     30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			ServiceName: "regform",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. An empty path loads ConfigFileName from the working
// directory if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.New("E101").
				Wrap(err).
				WithDetail(fmt.Sprintf("Could not parse %s: %v", path, err)).
				WithSuggestion("Check the file is valid YAML.")
		}
	} else if explicit {
		return nil, errors.New("E100").
			Wrap(err).
			WithDetail(fmt.Sprintf("No file at %s.", path)).
			WithSuggestion("Pass an existing file with --config, or omit the flag to use defaults.")
	} else {
		path = ""
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.New("E103").
			Wrap(err).
			WithDetail(err.Error()).
			WithSuggestion("Durations use Go syntax such as 5s or 30m.")
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sections are the top-level keys that hold nested settings.
var sections = []string{"server", "toast", "upload", "log", "metrics", "tracing"}

// envKey maps REGFORM_SERVER_READ_TIMEOUT to server.read_timeout.
// Variables that name no known key are ignored.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "dev_mode" {
		return key
	}
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}
	return ""
}

// Path returns the file the configuration was loaded from, or "" if only
// defaults and the environment were used.
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E110").
			WithSuggestion(fmt.Sprintf("server.port is %d.", c.Server.Port))
	}

	durations := []struct {
		key string
		d   time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.idle_timeout", c.Server.IdleTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"toast.duration", c.Toast.Duration},
		{"upload.ttl", c.Upload.TTL},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return errors.New("E111").
				WithDetail(fmt.Sprintf("%s must be positive, got %s.", d.key, d.d))
		}
	}

	if _, err := c.SlogLevel(); err != nil {
		return errors.New("E112").
			Wrap(err).
			WithSuggestion(fmt.Sprintf("log.level is %q.", c.Log.Level))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E113").
			WithSuggestion(fmt.Sprintf("log.format is %q.", c.Log.Format))
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("E114").
			WithDetail(fmt.Sprintf("upload.max_size must be positive, got %d.", c.Upload.MaxSize))
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
}
