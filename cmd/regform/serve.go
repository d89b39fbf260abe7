package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/regform/internal/config"
	"github.com/vango-dev/regform/internal/errors"
	"github.com/vango-dev/regform/pkg/middleware"
	"github.com/vango-dev/regform/pkg/server"
	"github.com/vango-dev/regform/pkg/upload"
)

type serveOptions struct {
	configPath string
	host       string
	port       int
	dev        bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the registration form server",
		Long: `Start the registration form server.

Configuration is read from regform.yaml in the working directory
(or the file given with --config), then from REGFORM_* environment
variables, then from flags.

Examples:
  regform serve
  regform serve --port=9000
  regform serve --config=prod.yaml
  REGFORM_SERVER_HOST=0.0.0.0 regform serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, os.Stderr)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./"+config.ConfigFileName+" if present)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Development mode")

	return cmd
}

// loadServeConfig loads the configuration and applies flags the user set.
func loadServeConfig(cmd *cobra.Command, opts serveOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("dev") {
		cfg.DevMode = opts.dev
	}
	return cfg, cfg.Validate()
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	shutdownTracing, err := setupTracing(cfg, logOut)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	srv := newServer(cfg, logger, prometheus.NewRegistry())

	if path := cfg.Path(); path != "" {
		info("config: %s", path)
	}
	success("Listening on %s", cfg.URL())

	if err := srv.Run(ctx); err != nil {
		return errors.New("E300").Wrap(err)
	}
	return nil
}

// newLogger builds the process logger from the log settings. Dev mode
// logs at debug level.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, errors.New("E112").Wrap(err)
	}
	if cfg.DevMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}

// setupTracing installs a global tracer provider exporting to w when
// tracing is enabled. The returned function flushes and stops it.
func setupTracing(cfg *config.Config, w io.Writer) (func(context.Context) error, error) {
	if !cfg.Tracing.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, errors.New("E301").Wrap(err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.Tracing.ServiceName),
			attribute.String("service.version", version),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// newServer wires the server with its observability stack.
func newServer(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) *server.Server {
	opts := []server.Option{server.WithLogger(logger)}

	if cfg.Tracing.Enabled {
		opts = append(opts, server.WithEventMiddleware(middleware.OpenTelemetry(
			middleware.WithTracerName(cfg.Tracing.ServiceName),
		)))
	}

	if cfg.Metrics.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := middleware.NewMetrics(middleware.WithRegistry(reg))
		opts = append(opts,
			server.WithEventMiddleware(m.Middleware()),
			server.WithSessionObserver(m),
			server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
	}

	return server.New(serverConfig(cfg), opts...)
}

func serverConfig(cfg *config.Config) *server.ServerConfig {
	return &server.ServerConfig{
		Address:         cfg.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		SessionConfig: &server.SessionConfig{
			ToastDuration: cfg.Toast.Duration,
		},
		Upload: &upload.Config{
			MaxFileSize: cfg.Upload.MaxSize,
			TempExpiry:  cfg.Upload.TTL,
		},
		MetricsPath: cfg.Metrics.Path,
		DevMode:     cfg.DevMode,
	}
}
