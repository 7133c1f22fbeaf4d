package main

import (
	"context"
	"time"

	"xpense/internal/amqp"
	"xpense/internal/cli"
	"xpense/internal/log"
	"xpense/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(context.Background(), logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Created transactions are announced to xpense-worker when a broker is set.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	txService := services.NewTransactionService(repo, publisher)
	processor := services.NewRecurringProcessor(repo, txService)
	runner := services.NewRecurringRunner(processor, cfg.RecurringProcessorInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := runner.Stop(ctx); err != nil {
			logger.Error("Failed to stop recurring runner", "error", err)
		}
	})

	logger.Info("Recurring expense processor configured",
		"interval", cfg.RecurringProcessorInterval,
		"sqlite_db", cfg.SQLiteDBPath)
	if err := runner.Start(ctx); err != nil {
		logger.Error("Failed to start recurring runner", "error", err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
