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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/habitdash/internal/api"
	"github.com/starford/habitdash/internal/habitservice"
	"github.com/starford/habitdash/internal/logseq"
	"github.com/starford/habitdash/internal/metrics"
	"github.com/starford/habitdash/internal/slot"
	"github.com/starford/habitdash/internal/sse"
	"github.com/starford/habitdash/internal/storage"
	"github.com/starford/habitdash/internal/watch"
)

// setup applies opts and builds the logger and host graph shared by all
// commands. graphRoot is empty unless the graph is a directory.
func setup(opts []Option) (app *application, logger *slog.Logger, graphRoot string, err error) {
	app = &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, "", fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger = slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if app.provider != nil {
		return app, logger, "", nil
	}

	switch cfg.Graph.Source {
	case GraphSourceDirectory:
		g, err := storage.NewGraph(cfg.Graph.Path)
		if err != nil {
			return nil, nil, "", fmt.Errorf("init graph: %w", err)
		}
		app.provider = g
		graphRoot = g.Root()
	default:
		app.provider = logseq.New(cfg.Logseq.URL, cfg.Logseq.Token, cfg.Logseq.Timeout,
			logseq.WithLogger(logger))
	}

	logger.Info("Configuration loaded",
		slog.String("graph_source", cfg.Graph.Source),
		slog.String("graph_path", graphRoot),
		slog.String("logseq_url", cfg.Logseq.URL),
		slog.String("dashboard_page", cfg.Dashboard.Page),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return app, logger, graphRoot, nil
}

func newService(cfg *Config, store storage.Provider, board *slot.Board, logger *slog.Logger, m *metrics.Metrics) *habitservice.Service {
	return habitservice.NewService(store, board, logger,
		habitservice.WithPage(cfg.Dashboard.Page),
		habitservice.WithRenderer(cfg.Dashboard.Renderer),
		habitservice.WithMetrics(m))
}

// Run starts the HTTP server (and the graph watcher for directory graphs)
// with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, graphRoot, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Metrics registry with runtime collectors.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	board := slot.NewBoard(broker, logger)
	svc := newService(cfg, app.provider, board, logger, m)

	// Make sure the dashboard page and its marker block exist.
	svc.EnsureDashboardPage(ctx)

	apiRouter := api.NewRouter(svc, board, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", readyHandler(app.provider, cfg.Dashboard.Page))

	r.Handle("/metrics", m.Handler())
	// Dashboard page and its slot-only event stream (unauthenticated).
	r.Mount("/dashboard", api.NewDashboardRouter(svc, board, cfg.Dashboard.Slot,
		broker.Stream(sse.EventSlotUpdated, sse.EventHabitsUpdated)))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch directory graphs and re-render open slots after changes.
	if graphRoot != "" {
		g.Go(func() error {
			return watch.Watch(gCtx, graphRoot, logger,
				broker.PublishJournalEvent,
				svc.RenderAll)
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// readyHandler reports ready once the host graph answers.
func readyHandler(store storage.Provider, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if _, err := store.GetPage(ctx, page); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
