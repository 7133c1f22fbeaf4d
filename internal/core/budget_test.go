package core

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func budget(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func expense(category, amount string) Transaction {
	return Transaction{
		Category:    category,
		Amount:      dec(amount),
		Description: "x",
		Date:        time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		IsExpense:   true,
	}
}

func income(category, amount string) Transaction {
	tx := expense(category, amount)
	tx.IsExpense = false
	return tx
}

func TestClassify(t *testing.T) {
	cases := []struct {
		pct  float64
		want WarningLevel
	}{
		{-10, WarningNone},
		{0, WarningNone},
		{74.99, WarningNone},
		{75, WarningWarning},
		{89.99, WarningWarning},
		{90, WarningCritical},
		{99.99, WarningCritical},
		{100, WarningExceeded},
		{250, WarningExceeded},
		{math.NaN(), WarningNone},
	}
	for _, tc := range cases {
		if got := Classify(tc.pct); got != tc.want {
			t.Fatalf("Classify(%v)=%s want %s", tc.pct, got, tc.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := Classify(-50)
	for p := -50.0; p <= 200; p += 0.5 {
		cur := Classify(p)
		if cur.Severity() < prev.Severity() {
			t.Fatalf("tier dropped from %s to %s at %v", prev, cur, p)
		}
		prev = cur
	}
}

func TestCalculateCategoryBudget(t *testing.T) {
	food := Category{ID: 1, Name: "Food", MonthlyBudget: budget("200")}

	t.Run("warning tier", func(t *testing.T) {
		s := CalculateCategoryBudget(food, []Transaction{expense("Food", "150")})
		if s == nil {
			t.Fatal("expected status")
		}
		if !s.Spent.Equal(dec("150")) || s.Percentage != 75 || s.WarningLevel != WarningWarning ||
			!s.Remaining.Equal(dec("50")) || s.IsOverBudget {
			t.Fatalf("unexpected status: %+v", s)
		}
	})

	t.Run("exceeded tier", func(t *testing.T) {
		s := CalculateCategoryBudget(food, []Transaction{expense("Food", "250")})
		if s.Percentage != 125 || s.WarningLevel != WarningExceeded ||
			!s.Remaining.Equal(dec("-50")) || !s.IsOverBudget {
			t.Fatalf("unexpected status: %+v", s)
		}
	})

	t.Run("only matching expenses count", func(t *testing.T) {
		txns := []Transaction{
			expense("Food", "20"),
			expense("food", "1000"), // case-sensitive match
			expense("Transport", "50"),
			income("Food", "500"),
			expense("Food", "-30"),
		}
		s := CalculateCategoryBudget(food, txns)
		if !s.Spent.Equal(dec("20")) {
			t.Fatalf("expected spent 20, got %s", s.Spent)
		}
	})

	t.Run("nil iff no positive budget", func(t *testing.T) {
		for _, b := range []*decimal.Decimal{nil, budget("0"), budget("-5")} {
			c := Category{Name: "Food", MonthlyBudget: b}
			if s := CalculateCategoryBudget(c, []Transaction{expense("Food", "10")}); s != nil {
				t.Fatalf("expected nil status for budget %v", b)
			}
		}
	})
}

func TestAggregateMonthlyBudget(t *testing.T) {
	categories := []Category{
		{ID: 1, Name: "Food", MonthlyBudget: budget("200")},
		{ID: 2, Name: "Transport", MonthlyBudget: budget("100")},
		{ID: 3, Name: "Other"},
	}
	txns := []Transaction{
		expense("Food", "150"),
		expense("Transport", "95"),
		expense("Other", "40"),
		expense("Deleted", "15"), // category no longer exists
		income("Salary", "3000"),
	}

	s := AggregateMonthlyBudget(categories, txns, nil)
	if len(s.CategoryBreakdown) != 2 {
		t.Fatalf("expected 2 budgeted categories, got %d", len(s.CategoryBreakdown))
	}
	if s.CategoryBreakdown[0].CategoryName != "Food" || s.CategoryBreakdown[1].CategoryName != "Transport" {
		t.Fatalf("breakdown should follow category order: %+v", s.CategoryBreakdown)
	}
	if s.CategoryBreakdown[1].WarningLevel != WarningCritical {
		t.Fatalf("expected Transport critical, got %s", s.CategoryBreakdown[1].WarningLevel)
	}
	if !s.TotalBudget.Equal(dec("300")) || !s.CategoryBudgetTotal.Equal(dec("300")) {
		t.Fatalf("unexpected budgets: total=%s categories=%s", s.TotalBudget, s.CategoryBudgetTotal)
	}
	if !s.TotalSpent.Equal(dec("300")) {
		t.Fatalf("expected total spent 300, got %s", s.TotalSpent)
	}
	if s.Percentage != 100 || s.WarningLevel != WarningExceeded || !s.TotalRemaining.IsZero() {
		t.Fatalf("unexpected portfolio status: %+v", s)
	}

	budgeted := decimal.Zero
	for _, c := range s.CategoryBreakdown {
		budgeted = budgeted.Add(c.Spent)
	}
	if budgeted.GreaterThan(s.TotalSpent) {
		t.Fatalf("breakdown spent %s exceeds total %s", budgeted, s.TotalSpent)
	}
}

func TestAggregateMonthlyBudgetBreakdownEqualsTotalWhenAllBudgeted(t *testing.T) {
	categories := []Category{
		{Name: "Food", MonthlyBudget: budget("200")},
		{Name: "Health", MonthlyBudget: budget("50")},
	}
	txns := []Transaction{expense("Food", "10"), expense("Health", "5"), expense("Food", "2.5")}
	s := AggregateMonthlyBudget(categories, txns, nil)

	sum := decimal.Zero
	for _, c := range s.CategoryBreakdown {
		sum = sum.Add(c.Spent)
	}
	if !sum.Equal(s.TotalSpent) {
		t.Fatalf("expected breakdown sum %s to equal total %s", sum, s.TotalSpent)
	}
}

func TestAggregateMonthlyBudgetGlobalOverride(t *testing.T) {
	categories := []Category{{Name: "Food", MonthlyBudget: budget("200")}}
	txns := []Transaction{expense("Food", "150")}

	s := AggregateMonthlyBudget(categories, txns, budget("1000"))
	if !s.TotalBudget.Equal(dec("1000")) || s.Percentage != 15 || s.WarningLevel != WarningNone {
		t.Fatalf("override not applied: %+v", s)
	}
	if !s.CategoryBudgetTotal.Equal(dec("200")) {
		t.Fatalf("category budget total should be kept, got %s", s.CategoryBudgetTotal)
	}

	for _, b := range []*decimal.Decimal{budget("0"), budget("-100")} {
		s = AggregateMonthlyBudget(categories, txns, b)
		if !s.TotalBudget.Equal(dec("200")) {
			t.Fatalf("non-positive override %s should be ignored, got %s", b, s.TotalBudget)
		}
	}
}

func TestAggregateMonthlyBudgetNoBudgets(t *testing.T) {
	s := AggregateMonthlyBudget([]Category{{Name: "Food"}}, []Transaction{expense("Food", "10")}, nil)
	if s.Percentage != 0 || s.WarningLevel != WarningNone || len(s.CategoryBreakdown) != 0 {
		t.Fatalf("zero budget must give 0%%, got %+v", s)
	}
	if math.IsNaN(s.Percentage) || math.IsInf(s.Percentage, 0) {
		t.Fatalf("percentage must be finite")
	}
}

func TestSummaryAtRisk(t *testing.T) {
	categories := []Category{
		{Name: "A", MonthlyBudget: budget("100")},
		{Name: "B", MonthlyBudget: budget("100")},
		{Name: "C", MonthlyBudget: budget("100")},
		{Name: "D", MonthlyBudget: budget("100")},
	}
	txns := []Transaction{expense("A", "80"), expense("B", "120"), expense("C", "10"), expense("D", "95")}
	s := AggregateMonthlyBudget(categories, txns, nil)

	risky := s.AtRisk(WarningWarning, 0)
	if len(risky) != 3 {
		t.Fatalf("expected 3 at-risk categories, got %d", len(risky))
	}
	if risky[0].CategoryName != "B" || risky[1].CategoryName != "D" || risky[2].CategoryName != "A" {
		t.Fatalf("unexpected order: %s %s %s", risky[0].CategoryName, risky[1].CategoryName, risky[2].CategoryName)
	}
	if top := s.AtRisk(WarningWarning, 1); len(top) != 1 || top[0].CategoryName != "B" {
		t.Fatalf("limit not applied: %+v", top)
	}
	// Aggregator output itself keeps category order.
	if s.CategoryBreakdown[0].CategoryName != "A" {
		t.Fatalf("AtRisk must not reorder the breakdown")
	}
}
