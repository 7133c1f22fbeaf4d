package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xpense/internal/core"
)

const recurringColumns = `id, amount, category, description, note, frequency, next_run, anchor_day, is_active, created_at, updated_at`

func scanRecurring(s rowScanner) (core.RecurringExpense, error) {
	var (
		re                          core.RecurringExpense
		amount, freq, next, cr, upd string
		active                      int
	)
	if err := s.Scan(&re.ID, &amount, &re.Category, &re.Description, &re.Note, &freq, &next, &re.AnchorDay, &active, &cr, &upd); err != nil {
		return re, err
	}
	d, err := parseAmount(amount)
	if err != nil {
		return re, err
	}
	re.Amount = d
	re.Frequency = core.Frequency(freq)
	re.NextRun = parseTime(next)
	re.IsActive = active != 0
	re.CreatedAt = parseTime(cr)
	re.UpdatedAt = parseTime(upd)
	return re, nil
}

func (r *SQLiteRepository) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if err := re.Validate(); err != nil {
		return re, err
	}
	if re.AnchorDay == 0 {
		re.AnchorDay = re.NextRun.UTC().Day()
	}
	now := r.now()
	re.CreatedAt, re.UpdatedAt = now, now
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_expenses (amount, category, description, note, frequency, next_run, anchor_day, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		re.Amount.String(), re.Category, re.Description, re.Note, string(re.Frequency),
		formatTime(re.NextRun), re.AnchorDay, boolToInt(re.IsActive), formatTime(now), formatTime(now))
	if err != nil {
		return re, fmt.Errorf("insert recurring expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return re, fmt.Errorf("last insert id: %w", err)
	}
	re.ID = id

	slog.InfoContext(ctx, "Recurring expense created",
		"recurring_id", re.ID,
		"frequency", re.Frequency,
		"next_run", re.NextRun)
	return re, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id int64) (core.RecurringExpense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses WHERE id = ?`, id)
	re, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return re, ErrNotFound
	}
	if err != nil {
		return re, fmt.Errorf("get recurring expense %d: %w", id, err)
	}
	return re, nil
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if err := re.Validate(); err != nil {
		return re, err
	}
	re.UpdatedAt = r.now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_expenses
		 SET amount = ?, category = ?, description = ?, note = ?, frequency = ?, next_run = ?, anchor_day = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		re.Amount.String(), re.Category, re.Description, re.Note, string(re.Frequency),
		formatTime(re.NextRun), re.AnchorDay, boolToInt(re.IsActive), formatTime(re.UpdatedAt), re.ID)
	if err != nil {
		return re, fmt.Errorf("update recurring expense %d: %w", re.ID, err)
	}
	if err := checkAffected(res); err != nil {
		return re, err
	}
	return r.GetRecurring(ctx, re.ID)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring expense %d: %w", id, err)
	}
	return checkAffected(res)
}

// ListRecurring returns all templates ordered by next run.
func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringExpense, error) {
	out, err := r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses ORDER BY next_run, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	return out, nil
}

// DueRecurring returns active templates whose next run is at or before now.
func (r *SQLiteRepository) DueRecurring(ctx context.Context, now time.Time) ([]core.RecurringExpense, error) {
	out, err := r.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_expenses
		 WHERE is_active = 1 AND next_run <= ? ORDER BY next_run, id`,
		formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("list due recurring expenses: %w", err)
	}
	return out, nil
}

// AdvanceRecurring moves the next run of id to next.
func (r *SQLiteRepository) AdvanceRecurring(ctx context.Context, id int64, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_expenses SET next_run = ?, updated_at = ? WHERE id = ?`,
		formatTime(next), formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("advance recurring expense %d: %w", id, err)
	}
	return checkAffected(res)
}
