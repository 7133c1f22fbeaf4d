package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"xpense/internal/core"
	"xpense/internal/format"
)

const recentLimit = 5

// BudgetReport is the budget view of the current month.
type BudgetReport struct {
	Period     core.Period
	Summary    core.MonthlyBudgetSummary
	Comparison core.MonthComparison
}

// Dashboard is the overview of every stored transaction.
type Dashboard struct {
	Stats     core.Stats
	Breakdown []core.CategoryAmount
	Weekly    []core.DayActivity
	Recent    []core.Transaction
	Format    format.Config
}

// BudgetService loads what the aggregation core needs and runs it.
type BudgetService struct {
	transactions TransactionStore
	categories   CategoryStore
	settings     SettingsStore
	selector     core.PeriodSelector
}

func NewBudgetService(transactions TransactionStore, categories CategoryStore, settings SettingsStore, clock core.Clock) *BudgetService {
	return &BudgetService{
		transactions: transactions,
		categories:   categories,
		settings:     settings,
		selector:     core.NewPeriodSelector(clock),
	}
}

func (s *BudgetService) Clock() core.Clock {
	return s.selector.Clock
}

// Report builds the current month summary and the comparison with the
// previous month from one consistent load.
func (s *BudgetService) Report(ctx context.Context) (BudgetReport, error) {
	current := s.selector.Current()
	previous := s.selector.Previous()

	var (
		txns       []core.Transaction
		categories []core.Category
		global     *decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.transactions.ListTransactionsBetween(gctx, previous.Start, current.End)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		global, err = s.settings.GlobalBudget(gctx)
		if err != nil {
			return fmt.Errorf("load global budget: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return BudgetReport{}, err
	}

	cur := current.Filter(txns)
	prev := previous.Filter(txns)
	return BudgetReport{
		Period:     current,
		Summary:    core.AggregateMonthlyBudget(categories, cur, global),
		Comparison: core.CompareMonths(cur, prev),
	}, nil
}

// Dashboard summarizes all transactions.
func (s *BudgetService) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		txns []core.Transaction
		cfg  format.Config
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.transactions.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cfg, err = s.settings.FormatConfig(gctx)
		if err != nil {
			return fmt.Errorf("load format config: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	recent := txns
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return Dashboard{
		Stats:     core.ComputeStats(txns),
		Breakdown: core.ExpenseBreakdown(txns),
		Weekly:    core.WeeklyActivity(txns, s.selector.Clock),
		Recent:    recent,
		Format:    cfg,
	}, nil
}
