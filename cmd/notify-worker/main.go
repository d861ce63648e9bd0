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
	"subtracker/internal/core"
	"subtracker/internal/log"
)

// notify-worker consumes renewal events off the queue and logs each charge.
// It is the attachment point for notification hooks (mail, push) that live
// outside the tracker itself.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentAMQP})
	log.SetDefault(logger)

	logger.Info("Starting notify-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notify-worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming renewal events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	err = amqpClient.ConsumeRenewals(ctx, func(msg *amqp.RenewalMessage) error {
		amount := core.FormatAmount(msg.AmountCents, core.Currency(msg.Currency))
		logger.Info("Subscription renewed",
			"subscription_id", msg.SubscriptionID,
			"name", msg.Name,
			"date", msg.Date,
			"amount", amount)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Notify-worker shutdown complete")
}
