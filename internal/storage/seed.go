package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"xpense/internal/core"
)

//go:embed seed/categories.yaml
var defaultCategoriesYAML []byte

type seedFile struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Color       string `yaml:"color"`
		Description string `yaml:"description"`
		Budget      string `yaml:"budget"`
	} `yaml:"categories"`
}

// DefaultCategories returns the built-in category set.
func DefaultCategories() ([]core.Category, error) {
	var f seedFile
	if err := yaml.Unmarshal(defaultCategoriesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse default categories: %w", err)
	}
	out := make([]core.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		budget, err := core.ParseBudget(c.Budget)
		if err != nil {
			return nil, fmt.Errorf("parse budget of %q: %w", c.Name, err)
		}
		out = append(out, core.Category{
			Name:          c.Name,
			MonthlyBudget: budget,
			Color:         c.Color,
			Description:   c.Description,
		})
	}
	return out, nil
}

// Initialize seeds the default categories the first time it runs on a database.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	_, err := r.GetSetting(ctx, SettingInitialized)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	defaults, err := DefaultCategories()
	if err != nil {
		return err
	}
	for _, c := range defaults {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name, monthly_budget, color, description) VALUES (?, ?, ?, ?)`,
			c.Name, budgetValue(c.MonthlyBudget), c.Color, c.Description); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	if err := r.SetSetting(ctx, SettingInitialized, "true"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Database initialized with default categories", "count", len(defaults))
	return nil
}

// SeedDefaultCategories replaces every category with the defaults.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context) error {
	defaults, err := DefaultCategories()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, c := range defaults {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, monthly_budget, color, description) VALUES (?, ?, ?, ?)`,
			c.Name, budgetValue(c.MonthlyBudget), c.Color, c.Description); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, 'true')
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, SettingInitialized); err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Default categories restored", "count", len(defaults))
	return nil
}
