package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
)

type RecurringTemplateStore interface {
	AddRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	GetRecurring(ctx context.Context, id int64) (core.RecurringExpense, error)
	UpdateRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	DeleteRecurring(ctx context.Context, id int64) error
	ListRecurring(ctx context.Context) ([]core.RecurringExpense, error)
}

// RecurringPatch lists the fields an update changes. Nil fields are kept.
type RecurringPatch struct {
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Note        *string
	Frequency   *core.Frequency
	NextRun     *time.Time
	AnchorDay   *int
	IsActive    *bool
}

// RecurringService edits recurring templates on behalf of the CLI and API.
type RecurringService struct {
	store RecurringTemplateStore
}

func NewRecurringService(store RecurringTemplateStore) *RecurringService {
	return &RecurringService{store: store}
}

func (s *RecurringService) List(ctx context.Context) ([]core.RecurringExpense, error) {
	return s.store.ListRecurring(ctx)
}

func (s *RecurringService) Add(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if err := re.Validate(); err != nil {
		return re, err
	}
	return s.store.AddRecurring(ctx, re)
}

// Update applies p to template id. Moving NextRun without an explicit
// anchor re-anchors the template on the new day.
func (s *RecurringService) Update(ctx context.Context, id int64, p RecurringPatch) (core.RecurringExpense, error) {
	re, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return re, fmt.Errorf("load recurring expense %d: %w", id, err)
	}

	if p.Amount != nil {
		re.Amount = *p.Amount
	}
	if p.Category != nil {
		re.Category = *p.Category
	}
	if p.Description != nil {
		re.Description = *p.Description
	}
	if p.Note != nil {
		re.Note = *p.Note
	}
	if p.Frequency != nil {
		re.Frequency = *p.Frequency
	}
	if p.NextRun != nil {
		re.NextRun = *p.NextRun
		re.AnchorDay = p.NextRun.UTC().Day()
	}
	if p.AnchorDay != nil {
		re.AnchorDay = *p.AnchorDay
	}
	if p.IsActive != nil {
		re.IsActive = *p.IsActive
	}

	if err := re.Validate(); err != nil {
		return re, err
	}
	return s.store.UpdateRecurring(ctx, re)
}

func (s *RecurringService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteRecurring(ctx, id); err != nil {
		return fmt.Errorf("delete recurring expense %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Recurring expense deleted", "recurring_id", id)
	return nil
}

// Skip drops the next occurrence of template id without creating a
// transaction, moving NextRun one period ahead.
func (s *RecurringService) Skip(ctx context.Context, id int64) (core.RecurringExpense, error) {
	re, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return re, fmt.Errorf("load recurring expense %d: %w", id, err)
	}
	next, err := NextRun(re.Frequency, re.NextRun, re.AnchorDay)
	if err != nil {
		return re, err
	}
	skipped := re.NextRun
	re.NextRun = next

	saved, err := s.store.UpdateRecurring(ctx, re)
	if err != nil {
		return saved, fmt.Errorf("skip recurring expense %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Recurring occurrence skipped",
		"recurring_id", id,
		"skipped", skipped,
		"next_run", next)
	return saved, nil
}
