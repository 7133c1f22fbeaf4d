package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/amqp"
	"xpense/internal/core"
	"xpense/internal/format"
)

var errNotFound = errors.New("not found")

// memStore implements every store port in memory.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	txns       []core.Transaction
	categories []core.Category
	recurring  []core.RecurringExpense
	global     *decimal.Decimal
	cfg        format.Config
	advanced   map[int64]time.Time
	failAdd    error
}

func newMemStore() *memStore {
	return &memStore{cfg: format.Default(), advanced: map[int64]time.Time{}}
}

func (m *memStore) AddTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAdd != nil {
		return t, m.failAdd
	}
	m.nextID++
	t.ID = m.nextID
	m.txns = append(m.txns, t)
	return t, nil
}

func (m *memStore) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.txns {
		if m.txns[i].ID == t.ID {
			m.txns[i] = t
			return t, nil
		}
	}
	return t, errNotFound
}

func (m *memStore) DeleteTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.txns {
		if m.txns[i].ID == id {
			m.txns = append(m.txns[:i], m.txns[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, errNotFound
}

func (m *memStore) BulkAddTransactions(_ context.Context, txns []core.Transaction) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range txns {
		m.nextID++
		t.ID = m.nextID
		m.txns = append(m.txns, t)
	}
	return len(txns), nil
}

func (m *memStore) ClearTransactions(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.txns))
	m.txns = nil
	return n, nil
}

func (m *memStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.txns))
	for i := len(m.txns) - 1; i >= 0; i-- {
		out = append(out, m.txns[i])
	}
	return out, nil
}

func (m *memStore) ListTransactionsBetween(_ context.Context, start, end time.Time) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Transaction
	for _, t := range m.txns {
		if !t.Date.IsZero() && !t.Date.Before(start) && t.Date.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListCategories(context.Context) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Category(nil), m.categories...), nil
}

func (m *memStore) EnsureCategories(_ context.Context, names []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var added []string
	for _, n := range names {
		found := false
		for _, c := range m.categories {
			if c.Name == n {
				found = true
				break
			}
		}
		if !found {
			m.categories = append(m.categories, core.Category{ID: int64(len(m.categories) + 1), Name: n})
			added = append(added, n)
		}
	}
	return added, nil
}

func (m *memStore) GlobalBudget(context.Context) (*decimal.Decimal, error) {
	return m.global, nil
}

func (m *memStore) FormatConfig(context.Context) (format.Config, error) {
	return m.cfg, nil
}

func (m *memStore) DueRecurring(_ context.Context, now time.Time) ([]core.RecurringExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.RecurringExpense
	for _, re := range m.recurring {
		if re.IsActive && !re.NextRun.After(now) {
			out = append(out, re)
		}
	}
	return out, nil
}

func (m *memStore) AdvanceRecurring(_ context.Context, id int64, next time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recurring {
		if m.recurring[i].ID == id {
			m.recurring[i].NextRun = next
			m.advanced[id] = next
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) AddRecurring(_ context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	re.ID = m.nextID
	m.recurring = append(m.recurring, re)
	return re, nil
}

func (m *memStore) GetRecurring(_ context.Context, id int64) (core.RecurringExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, re := range m.recurring {
		if re.ID == id {
			return re, nil
		}
	}
	return core.RecurringExpense{}, errNotFound
}

func (m *memStore) UpdateRecurring(_ context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recurring {
		if m.recurring[i].ID == re.ID {
			m.recurring[i] = re
			return re, nil
		}
	}
	return re, errNotFound
}

func (m *memStore) DeleteRecurring(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recurring {
		if m.recurring[i].ID == id {
			m.recurring = append(m.recurring[:i], m.recurring[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) ListRecurring(context.Context) ([]core.RecurringExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.RecurringExpense(nil), m.recurring...), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev *amqp.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type staticCategorizer struct {
	category string
}

func (c staticCategorizer) SuggestCategory(context.Context, string, []core.Category, format.Config) string {
	return c.category
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }
