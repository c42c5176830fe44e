// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notecmd/internal/api"
	"github.com/starford/notecmd/internal/command"
	"github.com/starford/notecmd/internal/history"
	"github.com/starford/notecmd/internal/mcpserver"
	"github.com/starford/notecmd/internal/notify"
	"github.com/starford/notecmd/internal/service"
	"github.com/starford/notecmd/internal/settings"
	"github.com/starford/notecmd/internal/sse"
	"github.com/starford/notecmd/internal/storage"
	"github.com/starford/notecmd/internal/template"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// host is the command host shared by every entry point.
type host struct {
	settings *settings.Service
	history  *history.DB
	svc      *service.Service
}

func (h *host) Close() {
	h.svc.Close()
	_ = h.history.Close()
}

// openHost opens the vault, settings and run journal and wires the
// service. extra is merged into the service configuration.
func openHost(cfg *Config, logger *slog.Logger, extra service.Config) (*host, error) {
	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	vault, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Settings.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	st, err := settings.NewService(settings.NewStore(cfg.Settings.Path, settings.WithLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}

	db, err := history.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	sc := extra
	sc.Vault = vault
	sc.Settings = st
	sc.History = db
	sc.Label = cfg.Commands.Label
	sc.Logger = logger
	if sc.Notifier == nil {
		sc.Notifier = notify.Log{Logger: logger}
	} else {
		sc.Notifier = notify.Multi{notify.Log{Logger: logger}, sc.Notifier}
	}

	svc, err := service.New(sc)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init service: %w", err)
	}
	return &host{settings: st, history: db, svc: svc}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("settings_path", cfg.Settings.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker: notices, workspace events, runs and registration changes.
	broker := sse.NewBroker(500 * time.Millisecond)
	defer broker.Close()

	h, err := openHost(cfg, logger, service.Config{
		Notifier:          broker,
		Journal:           broker,
		Publish:           broker.PublishWorkspace,
		OnCommandsChanged: broker.PublishCommandsChanged,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	apiRouter := api.NewRouter(h.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if len(h.svc.Registry().List()) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"starting"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Follow external edits to the settings file.
	g.Go(func() error {
		if err := h.settings.Watch(gCtx); err != nil {
			logger.Warn("settings watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// A non-nil error cancels gCtx, which stops the watcher.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)

	h, err := openHost(app.config, logger, service.Config{})
	if err != nil {
		return err
	}
	defer h.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(h.svc).ServeStdio()
}

// RunOnce runs names as a sequence once and prints the notices.
func RunOnce(ctx context.Context, names, date string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)

	h, err := openHost(app.config, logger, service.Config{})
	if err != nil {
		return err
	}
	defer h.Close()

	res, err := h.svc.RunSequence(ctx, names, date)
	if res != nil {
		for _, n := range res.Notices {
			fmt.Fprintln(app.out, n)
		}
	}
	if err != nil {
		return err
	}
	if len(res.NotFound) > 0 || len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d commands did not run", len(res.NotFound)+len(res.Failed),
			len(res.NotFound)+len(res.Failed)+len(res.Executed))
	}
	return nil
}

// Resolve prints tmpl with its placeholders expanded against date, or
// today when date is empty.
func Resolve(_ context.Context, tmpl, date string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	r := template.New()
	out := r.Resolve(tmpl)
	if date != "" {
		ref, err := command.ParseDate(date, r.Now())
		if err != nil {
			return err
		}
		out = r.ResolveAt(tmpl, ref)
	}
	_, err = fmt.Fprintln(app.out, out)
	return err
}
