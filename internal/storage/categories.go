package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
)

func scanCategory(s rowScanner) (core.Category, error) {
	var (
		c      core.Category
		budget sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &budget, &c.Color, &c.Description); err != nil {
		return c, err
	}
	if budget.Valid && budget.String != "" {
		d, err := decimal.NewFromString(budget.String)
		if err != nil {
			return c, fmt.Errorf("parse budget of %q: %w", c.Name, err)
		}
		c.MonthlyBudget = &d
	}
	return c, nil
}

func budgetValue(b *decimal.Decimal) any {
	if b == nil || !b.IsPositive() {
		return nil
	}
	return b.String()
}

// ListCategories returns categories in insertion order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, monthly_budget, color, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, name string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, monthly_budget, color, description FROM categories WHERE name = ?`, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("get category %q: %w", name, err)
	}
	return c, nil
}

// AddCategory creates a category. Names are unique and case-sensitive.
func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, core.ErrEmptyCategory
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, monthly_budget, color, description) VALUES (?, ?, ?, ?)`,
		c.Name, budgetValue(c.MonthlyBudget), c.Color, c.Description)
	if isUniqueViolation(err) {
		return c, ErrDuplicateCategory
	}
	if err != nil {
		return c, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return c, fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	if !c.HasBudget() {
		c.MonthlyBudget = nil
	}

	slog.InfoContext(ctx, "Category created", "category", c.Name)
	return c, nil
}

// RenameCategory renames a category and the transactions and recurring
// expenses that reference it by name.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return core.ErrEmptyCategory
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE categories SET name = ? WHERE name = ?`, newName, oldName)
	if isUniqueViolation(err) {
		return ErrDuplicateCategory
	}
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE category = ?`, newName, oldName); err != nil {
		return fmt.Errorf("rename transaction categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE recurring_expenses SET category = ? WHERE category = ?`, newName, oldName); err != nil {
		return fmt.Errorf("rename recurring categories: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rename: %w", err)
	}

	slog.InfoContext(ctx, "Category renamed", "from", oldName, "to", newName)
	return nil
}

// SetCategoryBudget sets the monthly budget. A nil or non-positive budget clears it.
func (r *SQLiteRepository) SetCategoryBudget(ctx context.Context, name string, budget *decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET monthly_budget = ? WHERE name = ?`, budgetValue(budget), name)
	if err != nil {
		return fmt.Errorf("set budget of %q: %w", name, err)
	}
	return checkAffected(res)
}

// DeleteCategory removes the category. Transactions keep the dangling name.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete category %q: %w", name, err)
	}
	return checkAffected(res)
}

// EnsureCategories creates the missing names and returns the ones it added.
func (r *SQLiteRepository) EnsureCategories(ctx context.Context, names []string) ([]string, error) {
	var added []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name)
		if err != nil {
			return added, fmt.Errorf("ensure category %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = append(added, name)
		}
	}
	return added, nil
}
