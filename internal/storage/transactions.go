package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"xpense/internal/core"
)

const transactionColumns = `id, amount, category, description, note, date, is_expense, created_at, updated_at`

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t                          core.Transaction
		amount, date, created, upd string
		isExpense                  int
	)
	if err := s.Scan(&t.ID, &amount, &t.Category, &t.Description, &t.Note, &date, &isExpense, &created, &upd); err != nil {
		return t, err
	}
	d, err := parseAmount(amount)
	if err != nil {
		return t, err
	}
	t.Amount = d
	t.Date = parseTime(date)
	t.IsExpense = isExpense != 0
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(upd)
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AddTransaction stores t and returns it with ID and timestamps set.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (amount, category, description, note, date, is_expense, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Amount.String(), t.Category, t.Description, t.Note, formatTime(t.Date),
		boolToInt(t.IsExpense), formatTime(now), formatTime(now))
	if err != nil {
		return t, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return t, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", t.ID,
		"amount", t.Amount.String(),
		"category", t.Category,
		"is_expense", t.IsExpense)
	return t, nil
}

// BulkAddTransactions inserts txns in one database transaction.
func (r *SQLiteRepository) BulkAddTransactions(ctx context.Context, txns []core.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (amount, category, description, note, date, is_expense, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(r.now())
	for i, t := range txns {
		created, updated := now, now
		if !t.CreatedAt.IsZero() {
			created = formatTime(t.CreatedAt)
		}
		if !t.UpdatedAt.IsZero() {
			updated = formatTime(t.UpdatedAt)
		}
		if _, err := stmt.ExecContext(ctx, t.Amount.String(), t.Category, t.Description, t.Note,
			formatTime(t.Date), boolToInt(t.IsExpense), created, updated); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported", "count", len(txns))
	return len(txns), nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// UpdateTransaction overwrites every editable field of t.ID.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.UpdatedAt = r.now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, category = ?, description = ?, note = ?, date = ?, is_expense = ?, updated_at = ?
		 WHERE id = ?`,
		t.Amount.String(), t.Category, t.Description, t.Note, formatTime(t.Date),
		boolToInt(t.IsExpense), formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return t, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if err := checkAffected(res); err != nil {
		return t, err
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return checkAffected(res)
}

// ListTransactions returns every transaction, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txns, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// ListTransactionsBetween returns transactions dated in [start, end), oldest first.
func (r *SQLiteRepository) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	txns, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE date >= ? AND date < ? ORDER BY date, id`,
		formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("list transactions between: %w", err)
	}
	return txns, nil
}

// SearchTransactions matches query against description and note, ignoring case.
func (r *SQLiteRepository) SearchTransactions(ctx context.Context, query string) ([]core.Transaction, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	txns, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE lower(description) LIKE ? ESCAPE '\' OR lower(note) LIKE ? ESCAPE '\'
		 ORDER BY date DESC, id DESC`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return txns, nil
}

// ClearTransactions removes all transactions. Categories and settings survive.
func (r *SQLiteRepository) ClearTransactions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	slog.WarnContext(ctx, "All transactions deleted", "count", n)
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
