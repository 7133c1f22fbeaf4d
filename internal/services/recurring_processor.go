package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"xpense/internal/core"
)

const recurringNoteSuffix = " (Recurring)"

// RecurringProcessor turns due recurring templates into expense transactions.
type RecurringProcessor struct {
	recurring    RecurringStore
	transactions *TransactionService
}

func NewRecurringProcessor(recurring RecurringStore, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{recurring: recurring, transactions: transactions}
}

// ProcessDue creates one transaction dated now for every active template
// whose next run is at or before now, then advances the template by one
// period. A template that fell behind catches up one period per call.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.recurring == nil || p.transactions == nil {
		return 0, errors.New("processor not properly initialized")
	}

	due, err := p.recurring.DueRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"due", len(due),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, re := range due {
		next, err := NextRun(re.Frequency, re.NextRun, re.AnchorDay)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping recurring expense", "recurring_id", re.ID, "error", err)
			continue
		}

		t := core.Transaction{
			Amount:      re.Amount,
			Category:    re.Category,
			Description: re.Description,
			Note:        strings.TrimSpace(re.Note + recurringNoteSuffix),
			Date:        now,
			IsExpense:   true,
		}
		saved, err := p.transactions.Create(ctx, t)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"recurring_id", re.ID,
				"description", re.Description,
				"error", err)
			continue
		}

		if err := p.recurring.AdvanceRecurring(ctx, re.ID, next); err != nil {
			// The transaction exists; the template will fire again next run.
			slog.ErrorContext(ctx, "Failed to advance recurring expense",
				"recurring_id", re.ID,
				"error", err)
		}

		processed++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"recurring_id", re.ID,
			"transaction_id", saved.ID,
			"amount", re.Amount.String(),
			"frequency", re.Frequency,
			"next_run", next)
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		"processed", processed,
		"total_checked", len(due))
	return processed, nil
}

// RecurringRunner calls ProcessDue on a fixed interval until stopped.
type RecurringRunner struct {
	processor *RecurringProcessor
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRecurringRunner(processor *RecurringProcessor, interval time.Duration) *RecurringRunner {
	return &RecurringRunner{processor: processor, interval: interval, now: time.Now}
}

// Start begins the loop in the background. Returns an error if already running.
func (r *RecurringRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("recurring runner is already running")
	}
	if r.interval <= 0 {
		return fmt.Errorf("invalid interval %s", r.interval)
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.loop(ctx)

	slog.InfoContext(ctx, "Recurring runner started", "interval", r.interval)
	return nil
}

// Stop signals the loop and waits for the current run to finish.
func (r *RecurringRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	close(r.stopCh)
	done := r.doneCh
	r.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Recurring runner stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Recurring runner stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return nil
}

func (r *RecurringRunner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RecurringRunner) loop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)
	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *RecurringRunner) runOnce(ctx context.Context) {
	if _, err := r.processor.ProcessDue(ctx, r.now()); err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
	}
}
