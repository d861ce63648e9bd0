package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"subtracker/internal/amqp"
	"subtracker/internal/config"
	"subtracker/internal/log"
	"subtracker/internal/services"
	"subtracker/internal/storage"
)

// renewal-worker runs the billing catch-up loop apart from the app: it
// advances every active subscription's history to today on an interval,
// publishing one renewal event per appended charge when a broker is
// configured. Useful when the HTTP app is not kept running.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentRenewal})
	log.SetDefault(logger)

	logger.Info("Starting renewal-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.RenewalPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without renewal events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, renewal events will not be published")
	}

	processor := services.NewRenewalProcessor(repo, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Renewal processor configured",
		"interval", cfg.RenewalInterval, "sqlite_db", cfg.SQLiteDBPath)

	if err := processor.Run(ctx, cfg.RenewalInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Renewal processing stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Renewal-worker shutdown complete")
}
