package services

import (
	"context"
	"fmt"
	"log/slog"

	"xpense/internal/amqp"
	"xpense/internal/core"
)

// TransactionService validates writes, stores them and announces them on the
// event bus. Publishing is best effort: a stored transaction is never rolled
// back because the broker is down.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

// NewTransactionService returns a service. publisher may be nil.
func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return t, err
	}
	saved, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return t, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventCreated, saved.ID))
	return saved, nil
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return t, err
	}
	saved, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return t, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventUpdated, saved.ID))
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventDeleted, id))
	return nil
}

// Import stores already validated transactions in one batch.
func (s *TransactionService) Import(ctx context.Context, txns []core.Transaction) (int, error) {
	n, err := s.store.BulkAddTransactions(ctx, txns)
	if err != nil {
		return 0, fmt.Errorf("import transactions: %w", err)
	}
	if n > 0 {
		s.publish(ctx, amqp.NewBatchEvent(amqp.EventImported, n))
	}
	return n, nil
}

// Clear deletes every transaction.
func (s *TransactionService) Clear(ctx context.Context) (int64, error) {
	n, err := s.store.ClearTransactions(ctx)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.NewBatchEvent(amqp.EventCleared, int(n)))
	return n, nil
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event", "type", ev.Type)
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"type", ev.Type,
			"transaction_id", ev.ID,
			"error", err)
	}
}
