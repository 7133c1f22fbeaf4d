package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"xpense/internal/amqp"
	"xpense/internal/cli"
	"xpense/internal/core"
	apphttp "xpense/internal/http"
	"xpense/internal/insights"
	"xpense/internal/log"
	"xpense/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(context.Background(), logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Events are optional; without a broker the server only writes to SQLite.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	advisor := insights.NewAdvisor(nil)
	var categorizer services.Categorizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := insights.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Failed to initialize Gemini client, insights disabled", "error", err)
		} else {
			advisor = insights.NewAdvisor(gemini)
			categorizer = advisor
			logger.Info("AI insights enabled", "model", cfg.GeminiModel)
		}
	}

	txService := services.NewTransactionService(repo, publisher)
	budget := services.NewBudgetService(repo, repo, repo, core.SystemClock{})
	transfer := services.NewTransferService(txService, repo, repo, repo, budget, categorizer)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:        repo,
		Transactions: txService,
		Budget:       budget,
		Transfer:     transfer,
		Recurring:    services.NewRecurringService(repo),
		Advisor:      advisor,
		Logger:       logger,
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting xpense server", "port", cfg.Port, "sqlite_db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
