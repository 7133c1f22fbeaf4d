package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	Frequency string

	Transaction struct {
		ID          int64
		Amount      decimal.Decimal
		Category    string // soft reference to Category.Name
		Description string
		Note        string
		Date        time.Time // zero means the stored date could not be parsed
		IsExpense   bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Category struct {
		ID            int64
		Name          string
		MonthlyBudget *decimal.Decimal
		Color         string
		Description   string
	}

	RecurringExpense struct {
		ID          int64
		Amount      decimal.Decimal
		Category    string
		Description string
		Note        string
		Frequency   Frequency
		NextRun     time.Time
		AnchorDay   int // day of month monthly and yearly runs aim for; 0 uses NextRun's day
		IsActive    bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidAnchorDay = errors.New("invalid anchor day (must be between 1 and 31)")
)

const maxDescriptionLen = 200

// HasBudget reports whether the category tracks a positive monthly budget.
func (c Category) HasBudget() bool {
	return c.MonthlyBudget != nil && c.MonthlyBudget.IsPositive()
}

// Budget returns the monthly budget, or zero when none is tracked.
func (c Category) Budget() decimal.Decimal {
	if !c.HasBudget() {
		return decimal.Zero
	}
	return *c.MonthlyBudget
}

// IsSpend reports whether the transaction counts towards spending totals.
func (t Transaction) IsSpend() bool {
	return t.IsExpense && t.Amount.IsPositive()
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (re RecurringExpense) Validate() error {
	if !re.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if re.NextRun.IsZero() {
		return fmt.Errorf("invalid next run: %w", ErrInvalidDate)
	}
	if re.AnchorDay < 0 || re.AnchorDay > 31 {
		return ErrInvalidAnchorDay
	}
	if !re.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(re.Description) == "" {
		return ErrEmptyDescription
	}
	if len(re.Description) > maxDescriptionLen {
		return ErrDescriptionLong
	}
	if strings.TrimSpace(re.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
