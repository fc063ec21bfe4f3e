package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/scorepad/internal/api"
	"github.com/mcoot/scorepad/internal/config"
	"github.com/mcoot/scorepad/internal/factory"
)

func main() {
	// Load settings from the environment and an optional .env file
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Create application; this also restores collections from backup
	app, err := factory.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Repository:     app.Repository,
		PlayController: app.Play,
		Transfer:       app.Transfer,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Refresh backups in the background
	workerDone := app.Backup.Start(ctx)

	logger.Info("server starting", slog.String("addr", server.Addr()), slog.String("storage", cfg.Storage))

	// Serve until a shutdown signal arrives
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wait for the worker to stop, then flush any changes since its last tick
	cancel()
	<-workerDone
	if _, err := app.Backup.Tick(context.Background()); err != nil {
		logger.Warn("final backup failed", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
