package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"xpense/internal/core"
)

func TestRecurringProcessor_ProcessDue(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.recurring = []core.RecurringExpense{
		{ID: 1, Amount: amount("900"), Category: "Housing", Description: "Rent", Note: "flat",
			Frequency: core.Monthly, NextRun: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
		{ID: 2, Amount: amount("10"), Category: "Entertainment", Description: "Streaming",
			Frequency: core.Monthly, NextRun: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
		{ID: 3, Amount: amount("5"), Category: "Other", Description: "Paused",
			Frequency: core.Daily, NextRun: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: false},
	}
	pub := &recordingPublisher{}
	p := NewRecurringProcessor(store, NewTransactionService(store, pub))

	n, err := p.ProcessDue(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 processed, got %d", n)
	}
	if len(store.txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(store.txns))
	}

	tx := store.txns[0]
	if tx.Description != "Rent" || tx.Note != "flat (Recurring)" || !tx.IsExpense || !tx.Date.Equal(now) {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC); !store.advanced[1].Equal(want) {
		t.Errorf("expected next run %v, got %v", want, store.advanced[1])
	}
	if len(pub.events) != 1 {
		t.Errorf("expected 1 event, got %d", len(pub.events))
	}

	// Second run on the same day finds nothing due.
	n, err = p.ProcessDue(context.Background(), now)
	if err != nil || n != 0 {
		t.Fatalf("expected nothing due, got %d (err=%v)", n, err)
	}
}

func TestRecurringProcessor_EmptyNoteSuffix(t *testing.T) {
	store := newMemStore()
	store.recurring = []core.RecurringExpense{{ID: 1, Amount: amount("1"), Category: "Other",
		Description: "Coffee", Frequency: core.Daily, NextRun: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true}}
	p := NewRecurringProcessor(store, NewTransactionService(store, nil))

	if _, err := p.ProcessDue(context.Background(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.txns[0].Note; got != "(Recurring)" {
		t.Errorf("expected trimmed note, got %q", got)
	}
}

func TestRecurringProcessor_CreateFailureDoesNotAdvance(t *testing.T) {
	store := newMemStore()
	store.failAdd = errors.New("disk full")
	next := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.recurring = []core.RecurringExpense{{ID: 1, Amount: amount("1"), Category: "Other",
		Description: "Coffee", Frequency: core.Daily, NextRun: next, IsActive: true}}
	p := NewRecurringProcessor(store, NewTransactionService(store, nil))

	n, err := p.ProcessDue(context.Background(), next)
	if err != nil || n != 0 {
		t.Fatalf("expected 0 processed without error, got %d (err=%v)", n, err)
	}
	if _, ok := store.advanced[1]; ok {
		t.Error("template must not advance when the transaction was not stored")
	}
}

func TestRecurringProcessor_NotInitialized(t *testing.T) {
	p := NewRecurringProcessor(nil, nil)
	if _, err := p.ProcessDue(context.Background(), time.Now()); err == nil {
		t.Error("expected error for uninitialized processor")
	}
}

func TestRecurringRunner_IsRunning(t *testing.T) {
	r := NewRecurringRunner(NewRecurringProcessor(newMemStore(), nil), time.Hour)
	if r.IsRunning() {
		t.Error("runner should not be running initially")
	}
}

func TestRecurringRunner_StartTwice(t *testing.T) {
	store := newMemStore()
	r := NewRecurringRunner(NewRecurringProcessor(store, NewTransactionService(store, nil)), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Error("expected error when starting already running runner")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if r.IsRunning() {
		t.Error("runner should not be running after Stop")
	}
}

func TestRecurringRunner_StopNotRunning(t *testing.T) {
	r := NewRecurringRunner(nil, time.Hour)
	if err := r.Stop(context.Background()); err != nil {
		t.Errorf("Stop on idle runner should not fail: %v", err)
	}
}

func TestRecurringRunner_InvalidInterval(t *testing.T) {
	r := NewRecurringRunner(nil, 0)
	if err := r.Start(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestRecurringProcessor_KeepsAnchorDay(t *testing.T) {
	store := newMemStore()
	store.recurring = []core.RecurringExpense{
		{ID: 1, Amount: amount("900"), Category: "Housing", Description: "Rent",
			Frequency: core.Monthly, NextRun: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			AnchorDay: 31, IsActive: true},
	}
	p := NewRecurringProcessor(store, NewTransactionService(store, nil))

	if _, err := p.ProcessDue(context.Background(), time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC); !store.advanced[1].Equal(want) {
		t.Errorf("expected next run %v, got %v", want, store.advanced[1])
	}
}
