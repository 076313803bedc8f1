// Package server wires the HTTP stack and runs it.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anandthakker/turf-inside/internal/core/config"
	"github.com/anandthakker/turf-inside/internal/core/health"
	"github.com/anandthakker/turf-inside/internal/core/middleware"
	"github.com/anandthakker/turf-inside/internal/core/router"
)

// Run sets up http and serves until ctx is canceled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, api *router.API, ready health.ReadinessReporter) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(ready))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/inside", api.Inside())
	r.Get("/locate", api.Locate())
	r.Get("/fences", api.ListFences())
	r.Put("/fences/{id}", api.UpsertFence())
	r.Delete("/fences/{id}", api.DeleteFence())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
