package main

import (
	"context"
	"errors"
	"os"
	"time"

	"xpense/internal/amqp"
	"xpense/internal/cli"
	"xpense/internal/core"
	"xpense/internal/log"
	"xpense/internal/services"
	"xpense/internal/sheets"
	gsheet "xpense/internal/sheets/google"
	"xpense/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting xpense-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.EventsEnabled() {
		logger.Error("xpense-worker needs AMQP_URL to consume transaction events")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	repo := cli.InitSQLite(ctx, logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The spreadsheet mirror is optional.
	var mirror sheets.TransactionWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = sheetsClient
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)

		if added, err := worker.SyncCategories(ctx, sheetsClient, repo); err != nil {
			logger.Error("Failed to sync categories", "error", err)
		} else {
			logger.Info("Categories synced from spreadsheet", "added", added)
		}
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	budget := services.NewBudgetService(repo, repo, repo, core.SystemClock{})
	w := worker.NewWorker(budget, repo, repo, mirror)

	// Alerts raised while the worker was down surface on startup.
	if _, err := w.CheckBudgets(ctx); err != nil {
		logger.Error("Startup budget check failed", "error", err)
	}

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeEvents(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
