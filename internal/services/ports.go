package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/amqp"
	"xpense/internal/core"
	"xpense/internal/format"
)

type TransactionStore interface {
	AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	BulkAddTransactions(ctx context.Context, txns []core.Transaction) (int, error)
	ClearTransactions(ctx context.Context) (int64, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]core.Transaction, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	EnsureCategories(ctx context.Context, names []string) ([]string, error)
}

type SettingsStore interface {
	GlobalBudget(ctx context.Context) (*decimal.Decimal, error)
	FormatConfig(ctx context.Context) (format.Config, error)
}

type RecurringStore interface {
	DueRecurring(ctx context.Context, now time.Time) ([]core.RecurringExpense, error)
	AdvanceRecurring(ctx context.Context, id int64, next time.Time) error
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// Categorizer picks a category for a free-text description.
type Categorizer interface {
	SuggestCategory(ctx context.Context, description string, categories []core.Category, cfg format.Config) string
}
