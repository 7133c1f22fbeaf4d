package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
	"xpense/internal/format"
)

const (
	SettingInitialized  = "db-initialized"
	SettingGlobalBudget = "global-monthly-budget"
	SettingCurrency     = "wallet-currency"
	SettingDateFormat   = "wallet-date-format"
)

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Missing keys are not an error.
func (r *SQLiteRepository) DeleteSetting(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// GlobalBudget returns the monthly override, or nil when none is set.
func (r *SQLiteRepository) GlobalBudget(ctx context.Context) (*decimal.Decimal, error) {
	v, err := r.GetSetting(ctx, SettingGlobalBudget)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b, err := core.ParseBudget(v)
	if err != nil {
		return nil, fmt.Errorf("parse global budget %q: %w", v, err)
	}
	return b, nil
}

// SetGlobalBudget stores the override. A nil or non-positive value clears it.
func (r *SQLiteRepository) SetGlobalBudget(ctx context.Context, b *decimal.Decimal) error {
	if b == nil || !b.IsPositive() {
		return r.DeleteSetting(ctx, SettingGlobalBudget)
	}
	return r.SetSetting(ctx, SettingGlobalBudget, b.String())
}

// FormatConfig reads the display preferences, falling back to defaults.
func (r *SQLiteRepository) FormatConfig(ctx context.Context) (format.Config, error) {
	cfg := format.Default()
	if v, err := r.GetSetting(ctx, SettingCurrency); err == nil {
		cfg.Currency = v
	} else if !errors.Is(err, ErrNotFound) {
		return cfg, err
	}
	if v, err := r.GetSetting(ctx, SettingDateFormat); err == nil {
		cfg.DateFormat = v
	} else if !errors.Is(err, ErrNotFound) {
		return cfg, err
	}
	return cfg, nil
}

// SetFormatConfig validates and stores the display preferences.
func (r *SQLiteRepository) SetFormatConfig(ctx context.Context, cfg format.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := r.SetSetting(ctx, SettingCurrency, cfg.Currency); err != nil {
		return err
	}
	return r.SetSetting(ctx, SettingDateFormat, cfg.DateFormat)
}
