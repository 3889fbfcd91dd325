// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/craftfolder/internal/api"
	"github.com/starford/craftfolder/internal/inbox"
	"github.com/starford/craftfolder/internal/mcpserver"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/session"
	"github.com/starford/craftfolder/internal/sse"
	"github.com/starford/craftfolder/internal/storage"
	"github.com/starford/craftfolder/internal/transfer"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts...)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("media_path", cfg.Media.Path),
		slog.Bool("inbox_enabled", cfg.Inbox.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	// SSE broker fed by every store.
	broker := sse.NewBroker(app.timelineThrottle)
	defer broker.Close()

	svc.projects.OnChange(func(c projects.Change) {
		broker.PublishProjectEvent(string(c.Kind), c.ProjectID)
	})
	svc.collection.OnChange(broker.PublishCollectionUpdated)

	g, gCtx := errgroup.WithContext(ctx)

	sessions := session.NewManager(gCtx, svc.projects, logger,
		session.WithTickHook(func(e session.TickEvent) {
			broker.PublishTick(e.TrackerID, e.ProjectID, e.Seconds)
		}),
		session.WithSavedHook(func(projectID string, s models.Session) {
			broker.PublishSessionSaved(projectID, s.ID, s.Seconds)
		}),
	)
	defer sessions.Close()

	apiRouter := api.NewRouter(api.Deps{
		Projects:   svc.projects,
		Sessions:   sessions,
		Collection: svc.collection,
		Settings:   svc.settings,
		Transfer:   svc.transfer,
		Media:      svc.media,
		Events:     broker,
		Locale:     cfg.App.Locale,
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	if cfg.Inbox.Enabled {
		inboxFS, err := storage.NewFS(cfg.Inbox.Path)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		g.Go(func() error {
			err := inbox.Watch(gCtx, inboxFS, svc.transfer, logger, func(name string, res transfer.ImportResult, err error) {
				if err != nil {
					return
				}
				logger.Info("inbox: imported",
					slog.String("file", name),
					slog.Int("count", res.Count))
			})
			if err != nil {
				// The server keeps running without the inbox.
				logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		// Stop live trackers first so no tick goroutine outlives the server.
		sessions.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// SSE handlers return once their channels close.
		broker.Close()
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the inbox watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts...)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stderr)
	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := mcpserver.New(mcpserver.Deps{
		Projects:   svc.projects,
		Collection: svc.collection,
		Settings:   svc.settings,
		Transfer:   svc.transfer,
		Media:      svc.media,
		Locale:     cfg.App.Locale,
	})

	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

// Export writes the project list to the export directory.
func Export(ctx context.Context, opts ...Option) (transfer.ExportResult, error) {
	app := newApplication(opts...)
	if app.config == nil {
		return transfer.ExportResult{}, fmt.Errorf("config is required")
	}

	logger := newLogger(app.config, os.Stderr)
	svc, err := openServices(ctx, app.config, logger)
	if err != nil {
		return transfer.ExportResult{}, err
	}
	defer svc.Close()

	return svc.transfer.Export(ctx)
}

// Import reads an export file and merges or replaces the stored projects.
func Import(ctx context.Context, file, mode string, opts ...Option) (transfer.ImportResult, error) {
	app := newApplication(opts...)
	if app.config == nil {
		return transfer.ImportResult{}, fmt.Errorf("config is required")
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return transfer.ImportResult{}, fmt.Errorf("read %s: %w", file, err)
	}

	logger := newLogger(app.config, os.Stderr)
	svc, err := openServices(ctx, app.config, logger)
	if err != nil {
		return transfer.ImportResult{}, err
	}
	defer svc.Close()

	res, err := svc.transfer.Import(ctx, raw, mode)
	if err != nil && !errors.Is(err, projects.ErrPersist) {
		return transfer.ImportResult{}, err
	}
	return res, err
}
