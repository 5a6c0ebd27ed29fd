package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"messageapp/internal/app"
	"messageapp/internal/config"
	"messageapp/internal/database"
	"messageapp/internal/services"
	"messageapp/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server gracefully stopped")
}

// run serves the API until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg config.Config) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// --- Initialize RabbitMQ Client ---
	// Events are optional: without a broker URL nothing is published.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		events = mqClient

		// Audit consumer: logs every event it receives.
		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			slog.Warn("event consumer not started", "error", err)
		}
	} else {
		slog.Info("RABBITMQ_URL not set, domain events disabled")
	}

	fiberApp, _ := app.New(db, app.ServiceConfig(cfg), events, app.Options{})

	// --- Start HTTP Server ---
	slog.Info("Starting server", "port", cfg.AppPort, "driver", cfg.Database.Driver)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- fiberApp.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	if err := fiberApp.Shutdown(); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}
