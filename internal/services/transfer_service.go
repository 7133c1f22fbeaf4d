package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"xpense/internal/core"
	"xpense/internal/transfer"
)

// Concurrent category suggestions issued during an OFX import.
const suggestConcurrency = 4

// ErrInvalidFile marks imports rejected before any row was read.
var ErrInvalidFile = errors.New("invalid import file")

// ImportSummary reports what an import stored.
type ImportSummary struct {
	Imported      int                 `json:"imported"`
	Errors        []transfer.RowError `json:"errors"`
	NewCategories []string            `json:"newCategories"`
}

// TransferService imports files into storage and exports stored data.
type TransferService struct {
	transactions *TransactionService
	store        TransactionStore
	categories   CategoryStore
	settings     SettingsStore
	budget       *BudgetService
	categorizer  Categorizer
	now          func() time.Time
}

// NewTransferService wires the service. categorizer may be nil, in which
// case OFX imports use the fallback category.
func NewTransferService(transactions *TransactionService, store TransactionStore, categories CategoryStore,
	settings SettingsStore, budget *BudgetService, categorizer Categorizer) *TransferService {
	return &TransferService{
		transactions: transactions,
		store:        store,
		categories:   categories,
		settings:     settings,
		budget:       budget,
		categorizer:  categorizer,
		now:          time.Now,
	}
}

func (s *TransferService) categoryNames(ctx context.Context) ([]core.Category, []string, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load categories: %w", err)
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return cats, names, nil
}

// ImportCSV parses r and stores every valid row. Structural CSV errors
// abort before anything is written.
func (s *TransferService) ImportCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	_, names, err := s.categoryNames(ctx)
	if err != nil {
		return ImportSummary{}, err
	}
	res, err := transfer.ParseCSV(r, names, s.now())
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return s.persist(ctx, res)
}

// ImportOFX parses a bank statement. Without a categorizer every row is
// filed under fallbackCategory.
func (s *TransferService) ImportOFX(ctx context.Context, r io.Reader, fallbackCategory string) (ImportSummary, error) {
	cats, names, err := s.categoryNames(ctx)
	if err != nil {
		return ImportSummary{}, err
	}
	res, err := transfer.ParseOFX(r, names, fallbackCategory, s.now())
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if s.categorizer != nil && len(cats) > 0 {
		if err := s.categorize(ctx, res.Valid, cats); err != nil {
			return ImportSummary{}, err
		}
		res.NewCategories = newNames(res.Valid, names)
	}
	return s.persist(ctx, res)
}

func (s *TransferService) categorize(ctx context.Context, txns []core.Transaction, cats []core.Category) error {
	cfg, err := s.settings.FormatConfig(ctx)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(suggestConcurrency)
	for i := range txns {
		g.Go(func() error {
			txns[i].Category = s.categorizer.SuggestCategory(gctx, txns[i].Description, cats, cfg)
			return nil
		})
	}
	return g.Wait()
}

func newNames(txns []core.Transaction, existing []string) []string {
	known := make(map[string]bool, len(existing))
	for _, n := range existing {
		known[n] = true
	}
	var out []string
	for _, t := range txns {
		if !known[t.Category] {
			known[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

func (s *TransferService) persist(ctx context.Context, res transfer.ImportResult) (ImportSummary, error) {
	summary := ImportSummary{Errors: res.Errors, NewCategories: res.NewCategories}
	if len(res.NewCategories) > 0 {
		if _, err := s.categories.EnsureCategories(ctx, res.NewCategories); err != nil {
			return summary, fmt.Errorf("create categories: %w", err)
		}
	}
	n, err := s.transactions.Import(ctx, res.Valid)
	if err != nil {
		return summary, err
	}
	summary.Imported = n

	slog.InfoContext(ctx, "Import completed",
		"imported", n,
		"rejected", len(res.Errors),
		"new_categories", len(res.NewCategories))
	return summary, nil
}

// ExportCSV writes every transaction, newest first.
func (s *TransferService) ExportCSV(ctx context.Context, w io.Writer) error {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	return transfer.WriteCSV(w, txns)
}

// ExportXLSX writes every transaction and the current month budget summary.
func (s *TransferService) ExportXLSX(ctx context.Context, w io.Writer) error {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	report, err := s.budget.Report(ctx)
	if err != nil {
		return err
	}
	cfg, err := s.settings.FormatConfig(ctx)
	if err != nil {
		return err
	}
	return transfer.WriteXLSX(w, txns, report.Summary, report.Period, cfg)
}
