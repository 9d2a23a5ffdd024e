// Package app wires configuration, logging, services and transport into a
// runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txdash/internal/config"
	"txdash/internal/infrastructure"
	"txdash/internal/ingest"
	"txdash/internal/middleware"
	"txdash/internal/services"
	transporthttp "txdash/internal/transport/http"
	"txdash/internal/websocket"
)

// Application holds the wired components of the dashboard service.
type Application struct {
	config  *config.Config
	logger  *slog.Logger
	hub     *websocket.Hub
	service *services.DashboardService
	server  *http.Server
}

// New loads configuration and assembles the application. The dataset is not
// loaded yet; Run performs the initial load before serving.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	hub := websocket.NewHub(logger)
	ingestor := ingest.New(cfg.Ingest.FilePrefix, cfg.Ingest.Concurrency, logger)
	service := services.NewDashboardService(ingestor, cfg.Ingest.DataDir, logger, hub)

	app := &Application{
		config:  cfg,
		logger:  logger,
		hub:     hub,
		service: service,
	}
	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

// router builds the HTTP routing tree with the full middleware chain.
func (a *Application) router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	if a.config.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(a.config.RateLimit.RPS, a.config.RateLimit.Burst, a.logger)
		r.Use(rl.Handler)
	}

	dashboard := transporthttp.NewDashboardHandler(a.service, a.logger)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/dashboard", dashboard.Routes())
	})
	r.Get("/ws", a.hub.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// Run performs the initial data load, starts the HTTP server, and blocks
// until the context is cancelled or a termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// An empty data directory is not fatal at startup: the server comes up
	// and answers NO_DATA until files appear and a reload succeeds.
	if err := a.service.Reload(ctx); err != nil {
		if errors.Is(err, services.ErrNoData) {
			a.logger.Warn("starting with no transaction data",
				slog.String("data_dir", a.config.Ingest.DataDir))
		} else {
			return fmt.Errorf("initial data load: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
