package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/orbat/internal/config"
	"github.com/aristath/orbat/internal/database"
	"github.com/aristath/orbat/internal/modules/optimization"
	"github.com/aristath/orbat/internal/scheduler"
	"github.com/aristath/orbat/internal/server"
	"github.com/aristath/orbat/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting orbat")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire the optimization module
	optService := optimization.NewOptimizerService(log)
	runRepo := optimization.NewRunRepository(db, log)
	optHandler := optimization.NewHandler(optService, runRepo, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if err := registerJobs(sched, cfg, optService, runRepo, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:         cfg.Port,
		Log:          log,
		Optimization: optHandler,
		DevMode:      cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	optService *optimization.OptimizerService,
	runRepo *optimization.RunRepository,
	log zerolog.Logger,
) error {
	// The re-optimization job only runs when input files are configured.
	if cfg.ReturnsPath == "" {
		log.Info().Msg("No input files configured, skipping re-optimization job")
		return nil
	}

	job := optimization.NewReoptimizeJob(cfg.ReturnsPath, cfg.CovariancePath, optService, runRepo, log)
	if err := sched.AddJob(cfg.ReoptimizeSchedule, job); err != nil {
		return err
	}

	// Compute an initial portfolio at startup rather than waiting for the
	// first scheduled tick.
	if err := sched.RunNow(job); err != nil {
		log.Warn().Err(err).Msg("Initial optimization failed")
	}

	return nil
}
