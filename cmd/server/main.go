// Package main is the entry point for the stockboard API server.
// It serves the menu, portfolio ledger, settings, session and watchlist
// state over HTTP/JSON and runs the background sync and backup jobs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aristath/stockboard/internal/config"
	"github.com/aristath/stockboard/internal/di"
	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/server"
	"github.com/aristath/stockboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", di.Version).Str("data_dir", cfg.DataDir).Msg("Starting stockboard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		if domain.IsConfiguration(err) {
			log.Fatal().Err(err).Msg("Invalid menu configuration")
		}
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
	})

	container.Scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	// Wait for a signal (or a server failure), then shut everything down
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	waitErr := g.Wait()
	if waitErr != nil {
		log.Error().Err(waitErr).Msg("Server stopped with error")
	}

	// Let in-flight jobs finish before the database closes
	container.Scheduler.Stop()
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close state database")
	}

	log.Info().Msg("Server stopped")
	if waitErr != nil {
		os.Exit(1)
	}
}
