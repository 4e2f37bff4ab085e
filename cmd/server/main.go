package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/energyofmoney/internal/api"
	"github.com/mcoot/energyofmoney/internal/config"
	"github.com/mcoot/energyofmoney/internal/factory"
	"github.com/mcoot/energyofmoney/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factory.FromServerConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Background jobs drive turn deadlines and cleanup
	scheduler := jobs.NewScheduler(logger)
	intervals := jobs.DefaultIntervals()
	intervals.Tick = cfg.TickInterval
	intervals.Sweep = cfg.SweepInterval
	if err := jobs.Register(scheduler, app.JobServices(), intervals, logger); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		Rooms:       app.Rooms,
		Turns:       app.Turns,
		Ledger:      app.Ledger,
		HubManager:  app.HubManager,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Open event streams would otherwise hold Shutdown until its timeout
		app.HubManager.CloseAll()
		return server.Shutdown(context.Background())
	}
}
