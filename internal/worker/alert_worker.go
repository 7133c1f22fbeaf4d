package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"xpense/internal/amqp"
	"xpense/internal/core"
	"xpense/internal/services"
	"xpense/internal/sheets"
	"xpense/internal/storage"
)

type (
	BudgetReporter interface {
		Report(ctx context.Context) (services.BudgetReport, error)
	}

	// AlertState remembers the highest tier already announced.
	AlertState interface {
		GetSetting(ctx context.Context, key string) (string, error)
		SetSetting(ctx context.Context, key, value string) error
	}

	TransactionReader interface {
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	CategoryEnsurer interface {
		EnsureCategories(ctx context.Context, names []string) ([]string, error)
	}
)

// Alert is raised the first time a budget reaches a tier within a month.
// Overall alerts concern the whole monthly budget and carry no category.
type Alert struct {
	Category   string
	Overall    bool
	Level      core.WarningLevel
	Percentage float64
	Spent      decimal.Decimal
	Budget     decimal.Decimal
}

// Worker reacts to transaction events: it re-checks budgets after every
// change and mirrors new transactions to the spreadsheet when one is set.
type Worker struct {
	budget       BudgetReporter
	state        AlertState
	transactions TransactionReader
	mirror       sheets.TransactionWriter
}

// NewWorker returns a worker. mirror may be nil.
func NewWorker(budget BudgetReporter, state AlertState, transactions TransactionReader, mirror sheets.TransactionWriter) *Worker {
	return &Worker{budget: budget, state: state, transactions: transactions, mirror: mirror}
}

// HandleEvent processes a single transaction event from AMQP.
func (w *Worker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"type", ev.Type,
		"transaction_id", ev.ID,
		"count", ev.Count)

	if _, err := w.CheckBudgets(ctx); err != nil {
		return fmt.Errorf("check budgets: %w", err)
	}

	if ev.Type == amqp.EventCreated && w.mirror != nil {
		if err := w.mirrorTransaction(ctx, ev.ID); err != nil {
			return fmt.Errorf("mirror transaction: %w", err)
		}
	}
	return nil
}

// CheckBudgets recomputes the current month and returns the alerts that
// were not raised before. Each category alerts at most once per tier per
// month; a tier that drops and rises again stays quiet.
func (w *Worker) CheckBudgets(ctx context.Context) ([]Alert, error) {
	report, err := w.budget.Report(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]Alert, 0, len(report.Summary.CategoryBreakdown)+1)
	for _, c := range report.Summary.CategoryBreakdown {
		candidates = append(candidates, alertFor(c.CategoryName, c.BudgetStatus))
	}
	if report.Summary.TotalBudget.IsPositive() {
		s := report.Summary
		candidates = append(candidates, Alert{
			Overall:    true,
			Level:      s.WarningLevel,
			Percentage: s.Percentage,
			Spent:      s.TotalSpent,
			Budget:     s.TotalBudget,
		})
	}

	var raised []Alert
	for _, a := range candidates {
		if a.Level.Severity() == 0 {
			continue
		}
		key := a.key(report.Period)
		prev, err := w.lastLevel(ctx, key)
		if err != nil {
			return raised, err
		}
		if a.Level.Severity() <= prev.Severity() {
			continue
		}
		if err := w.state.SetSetting(ctx, key, string(a.Level)); err != nil {
			return raised, fmt.Errorf("save alert state: %w", err)
		}

		slog.WarnContext(ctx, "Budget threshold reached",
			"category", a.Category,
			"overall", a.Overall,
			"level", a.Level,
			"percentage", a.Percentage,
			"spent", a.Spent.StringFixed(2),
			"budget", a.Budget.StringFixed(2),
			"period", report.Period.Label())
		raised = append(raised, a)
	}
	return raised, nil
}

func alertFor(name string, s core.BudgetStatus) Alert {
	return Alert{
		Category:   name,
		Level:      s.WarningLevel,
		Percentage: s.Percentage,
		Spent:      s.Spent,
		Budget:     s.Budget,
	}
}

// key is the settings entry holding the last tier announced. Overall and
// category alerts use separate prefixes.
func (a Alert) key(p core.Period) string {
	if a.Overall {
		return fmt.Sprintf("budget-alert:%s:overall", p.Label())
	}
	return fmt.Sprintf("budget-alert:%s:category:%s", p.Label(), a.Category)
}

func (w *Worker) lastLevel(ctx context.Context, key string) (core.WarningLevel, error) {
	v, err := w.state.GetSetting(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return core.WarningNone, nil
	}
	if err != nil {
		return core.WarningNone, fmt.Errorf("load alert state: %w", err)
	}
	return core.WarningLevel(v), nil
}

func (w *Worker) mirrorTransaction(ctx context.Context, id int64) error {
	t, err := w.transactions.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before we got to it.
		slog.InfoContext(ctx, "Transaction gone, skipping mirror", "transaction_id", id)
		return nil
	}
	if err != nil {
		return err
	}

	ref, err := w.mirror.Append(ctx, t)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Mirrored transaction",
		"transaction_id", id,
		"sheets_ref", ref,
		"amount", t.Amount.StringFixed(2))
	return nil
}

// SyncCategories creates locally any category listed in the spreadsheet.
func SyncCategories(ctx context.Context, reader sheets.CategoryReader, store CategoryEnsurer) (int, error) {
	names, err := reader.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("load categories from sheet: %w", err)
	}
	added, err := store.EnsureCategories(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("save categories: %w", err)
	}
	slog.InfoContext(ctx, "Categories synced from sheet",
		"listed", len(names),
		"added", len(added))
	return len(added), nil
}
