// Package main is the entry point for the rebalancer service.
// It serves target allocation trees, target editing and contribution
// suggestions over HTTP for the holdings stored alongside them.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/di"
	allocationhandlers "github.com/aristath/rebalancer/internal/modules/allocation/handlers"
	portfoliohandlers "github.com/aristath/rebalancer/internal/modules/portfolio/handlers"
	"github.com/aristath/rebalancer/internal/server"
	"github.com/aristath/rebalancer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting rebalancer")

	// Wire all dependencies: database, repositories, services, jobs
	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	system := server.NewSystemHandlers(log, container.DB, container.SectorCache)
	system.SetJobs(jobs.All()...)

	srv := server.New(server.Config{
		Log:    log,
		DB:     container.DB,
		System: system,
		Modules: []server.RouteRegistrar{
			allocationhandlers.NewHandler(container.TargetService, log),
			portfoliohandlers.NewHandler(container.PositionRepo, log),
		},
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	container.Scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop scheduling new jobs and let running ones finish
	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Drains pending target saves and sector lookups before closing the database
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	log.Info().Msg("Server stopped")
}
