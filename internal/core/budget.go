package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// WarningLevel is the severity tier of a spent/budget ratio.
type WarningLevel string

const (
	WarningNone     WarningLevel = "none"
	WarningWarning  WarningLevel = "warning"
	WarningCritical WarningLevel = "critical"
	WarningExceeded WarningLevel = "exceeded"
)

// Classify maps a percentage of budget used to a warning tier.
// Thresholds are inclusive lower bounds at 75, 90 and 100.
func Classify(percentage float64) WarningLevel {
	switch {
	case percentage >= 100:
		return WarningExceeded
	case percentage >= 90:
		return WarningCritical
	case percentage >= 75:
		return WarningWarning
	default:
		return WarningNone
	}
}

// Severity orders tiers from none (0) to exceeded (3).
func (w WarningLevel) Severity() int {
	switch w {
	case WarningExceeded:
		return 3
	case WarningCritical:
		return 2
	case WarningWarning:
		return 1
	default:
		return 0
	}
}

// Color returns the display colour of the tier.
func (w WarningLevel) Color() string {
	switch w {
	case WarningExceeded:
		return "#FF3B30"
	case WarningCritical:
		return "#FF9500"
	case WarningWarning:
		return "#FFCC00"
	default:
		return "#34C759"
	}
}

type (
	BudgetStatus struct {
		Spent        decimal.Decimal
		Budget       decimal.Decimal
		Percentage   float64
		Remaining    decimal.Decimal
		IsOverBudget bool
		WarningLevel WarningLevel
	}

	CategoryBudgetStatus struct {
		CategoryID   int64
		CategoryName string
		BudgetStatus
	}

	MonthlyBudgetSummary struct {
		// TotalBudget is the effective budget: the global override when set,
		// otherwise CategoryBudgetTotal.
		TotalBudget         decimal.Decimal
		CategoryBudgetTotal decimal.Decimal
		TotalSpent          decimal.Decimal
		TotalRemaining      decimal.Decimal
		Percentage          float64
		WarningLevel        WarningLevel
		CategoryBreakdown   []CategoryBudgetStatus
	}
)

func newBudgetStatus(spent, budget decimal.Decimal) BudgetStatus {
	pct := Ratio(spent, budget)
	return BudgetStatus{
		Spent:        spent,
		Budget:       budget,
		Percentage:   pct,
		Remaining:    budget.Sub(spent),
		IsOverBudget: spent.GreaterThan(budget),
		WarningLevel: Classify(pct),
	}
}

// CalculateCategoryBudget reports budget usage of one category over txns.
// It returns nil when the category has no positive budget.
func CalculateCategoryBudget(category Category, txns []Transaction) *CategoryBudgetStatus {
	if !category.HasBudget() {
		return nil
	}
	spent := decimal.Zero
	for _, t := range txns {
		if t.Category == category.Name && t.IsSpend() {
			spent = spent.Add(t.Amount)
		}
	}
	return &CategoryBudgetStatus{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		BudgetStatus: newBudgetStatus(spent, category.Budget()),
	}
}

// SpentByCategory sums spending per category name in a single pass and also
// returns the total over every category, including unknown ones.
func SpentByCategory(txns []Transaction) (map[string]decimal.Decimal, decimal.Decimal) {
	byName := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txns {
		if !t.IsSpend() {
			continue
		}
		byName[t.Category] = byName[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}
	return byName, total
}

// AggregateMonthlyBudget builds the portfolio summary for txns, which callers
// have already narrowed to one period. A positive globalBudget replaces the sum
// of category budgets as the effective ceiling.
func AggregateMonthlyBudget(categories []Category, txns []Transaction, globalBudget *decimal.Decimal) MonthlyBudgetSummary {
	spentByName, totalSpent := SpentByCategory(txns)

	summary := MonthlyBudgetSummary{
		CategoryBudgetTotal: decimal.Zero,
		TotalSpent:          totalSpent,
		CategoryBreakdown:   make([]CategoryBudgetStatus, 0, len(categories)),
	}
	for _, c := range categories {
		if !c.HasBudget() {
			continue
		}
		status := CategoryBudgetStatus{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			BudgetStatus: newBudgetStatus(spentByName[c.Name], c.Budget()),
		}
		summary.CategoryBreakdown = append(summary.CategoryBreakdown, status)
		summary.CategoryBudgetTotal = summary.CategoryBudgetTotal.Add(status.Budget)
	}

	summary.TotalBudget = summary.CategoryBudgetTotal
	if globalBudget != nil && globalBudget.IsPositive() {
		summary.TotalBudget = *globalBudget
	}
	summary.Percentage = Ratio(summary.TotalSpent, summary.TotalBudget)
	summary.TotalRemaining = summary.TotalBudget.Sub(summary.TotalSpent)
	summary.WarningLevel = Classify(summary.Percentage)
	return summary
}

// AtRisk returns breakdown entries at or above min, most severe first.
// A limit of zero or less returns all of them.
func (s MonthlyBudgetSummary) AtRisk(min WarningLevel, limit int) []CategoryBudgetStatus {
	var out []CategoryBudgetStatus
	for _, c := range s.CategoryBreakdown {
		if c.WarningLevel.Severity() >= min.Severity() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].WarningLevel.Severity(), out[j].WarningLevel.Severity()
		if si != sj {
			return si > sj
		}
		return out[i].Percentage > out[j].Percentage
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
