package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xpense/internal/cli"
	"xpense/internal/config"
	"xpense/internal/core"
	"xpense/internal/insights"
	"xpense/internal/log"
	"xpense/internal/services"
	"xpense/internal/storage"
)

// app holds what every subcommand needs once the database is open.
type app struct {
	repo         *storage.SQLiteRepository
	transactions *services.TransactionService
	budget       *services.BudgetService
	transfer     *services.TransferService
	recurring    *services.RecurringService
}

var (
	dbPath   string
	logLevel string
	current  *app

	rootCmd = &cobra.Command{
		Use:   "xpensectl",
		Short: "Manage xpense data from the terminal",
		Long: `xpensectl imports and exports transactions, shows the monthly budget
and compares the current month with the previous one.`,
		SilenceUsage:      true,
		PersistentPreRunE: openApp,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if current == nil {
				return nil
			}
			return current.repo.Close()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH or ./data/xpense.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(globalBudgetCmd())
	rootCmd.AddCommand(recurringCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(clearCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func openApp(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(logLevel),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)

	cfg := config.Load()
	if dbPath != "" {
		cfg.SQLiteDBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := repo.Initialize(cmd.Context()); err != nil {
		_ = repo.Close()
		return fmt.Errorf("initialize database: %w", err)
	}

	var categorizer services.Categorizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := insights.NewGemini(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("Gemini unavailable, OFX rows use the fallback category", "error", err)
		} else {
			categorizer = insights.NewAdvisor(gemini)
		}
	}

	txService := services.NewTransactionService(repo, nil)
	budget := services.NewBudgetService(repo, repo, repo, core.SystemClock{})
	current = &app{
		repo:         repo,
		transactions: txService,
		budget:       budget,
		transfer:     services.NewTransferService(txService, repo, repo, repo, budget, categorizer),
		recurring:    services.NewRecurringService(repo),
	}
	return nil
}
