// Package server wires the backend together and runs the HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rosterkeeper/internal/logging"
	"rosterkeeper/internal/server/config"
	"rosterkeeper/internal/server/httpapi"
	"rosterkeeper/internal/server/repositories/repomanager"
)

const shutdownTimeout = 10 * time.Second

// App owns the server lifecycle: configuration, database, HTTP API.
type App struct {
	cfg    *config.Config
	logger logging.Logger
	repos  repomanager.Manager
	api    *httpapi.Server
}

// NewApp loads dependencies and prepares the API. The database is opened
// and migrated here so startup fails fast on a bad DSN.
func NewApp(ctx context.Context) (*App, error) {
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := repomanager.NewPostgresManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		repos:  repos,
		api:    httpapi.NewServer(cfg, repos, logger),
	}, nil
}

// Run serves the API until ctx is cancelled or an interrupt arrives,
// then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    a.cfg.EndpointAddr,
		Handler: a.api.Routes(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info(ctx, "server listening", "addr", a.cfg.EndpointAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.repos.Close()
}
