package http

import (
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
	"xpense/internal/format"
	"xpense/internal/services"
)

// JSON views of the domain types. Decimals encode as strings.
type (
	transactionView struct {
		ID          int64           `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Note        string          `json:"note,omitempty"`
		Date        *time.Time      `json:"date"`
		IsExpense   bool            `json:"isExpense"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	categoryView struct {
		ID            int64            `json:"id"`
		Name          string           `json:"name"`
		MonthlyBudget *decimal.Decimal `json:"monthlyBudget"`
		Color         string           `json:"color,omitempty"`
		Description   string           `json:"description,omitempty"`
	}

	budgetStatusView struct {
		Spent        decimal.Decimal   `json:"spent"`
		Budget       decimal.Decimal   `json:"budget"`
		Percentage   float64           `json:"percentage"`
		Remaining    decimal.Decimal   `json:"remaining"`
		IsOverBudget bool              `json:"isOverBudget"`
		WarningLevel core.WarningLevel `json:"warningLevel"`
	}

	categoryBudgetView struct {
		CategoryID   int64  `json:"categoryId"`
		CategoryName string `json:"categoryName"`
		budgetStatusView
	}

	summaryView struct {
		Period              string               `json:"period"`
		TotalBudget         decimal.Decimal      `json:"totalBudget"`
		CategoryBudgetTotal decimal.Decimal      `json:"categoryBudgetTotal"`
		TotalSpent          decimal.Decimal      `json:"totalSpent"`
		TotalRemaining      decimal.Decimal      `json:"totalRemaining"`
		Percentage          float64              `json:"percentage"`
		WarningLevel        core.WarningLevel    `json:"warningLevel"`
		CategoryBreakdown   []categoryBudgetView `json:"categoryBreakdown"`
	}

	totalsView struct {
		Spent  decimal.Decimal `json:"spent"`
		Income decimal.Decimal `json:"income"`
		Net    decimal.Decimal `json:"net"`
	}

	comparisonView struct {
		CurrentMonth  totalsView `json:"currentMonth"`
		PreviousMonth totalsView `json:"previousMonth"`
		Changes       struct {
			SpentChange         decimal.Decimal `json:"spentChange"`
			SpentChangePercent  float64         `json:"spentChangePercent"`
			IncomeChange        decimal.Decimal `json:"incomeChange"`
			IncomeChangePercent float64         `json:"incomeChangePercent"`
		} `json:"changes"`
	}

	categoryAmountView struct {
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}

	dayActivityView struct {
		Date    string          `json:"date"`
		DayName string          `json:"dayName"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}

	dashboardView struct {
		TotalIncome  decimal.Decimal      `json:"totalIncome"`
		TotalExpense decimal.Decimal      `json:"totalExpense"`
		Balance      decimal.Decimal      `json:"balance"`
		Breakdown    []categoryAmountView `json:"expenseBreakdown"`
		Weekly       []dayActivityView    `json:"weeklyActivity"`
		Recent       []transactionView    `json:"recentTransactions"`
	}

	formatView struct {
		Currency   string `json:"currency"`
		DateFormat string `json:"dateFormat"`
	}

	recurringView struct {
		ID          int64           `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Note        string          `json:"note,omitempty"`
		Frequency   core.Frequency  `json:"frequency"`
		NextRun     time.Time       `json:"nextRun"`
		AnchorDay   int             `json:"anchorDay"`
		IsActive    bool            `json:"isActive"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}
)

// Request bodies.
type (
	transactionRequest struct {
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Note        string `json:"note"`
		Date        string `json:"date"`
		IsExpense   *bool  `json:"isExpense"`
	}

	categoryRequest struct {
		Name          string  `json:"name"`
		MonthlyBudget *string `json:"monthlyBudget"`
		Color         string  `json:"color"`
		Description   string  `json:"description"`
	}

	budgetRequest struct {
		// Amount is a positive decimal, or empty/"none" to clear.
		Amount string `json:"amount"`
	}

	suggestRequest struct {
		Description string `json:"description"`
	}

	// recurringRequest serves both create and update; on update, absent
	// fields keep their stored value.
	recurringRequest struct {
		Amount      *string `json:"amount"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		Note        *string `json:"note"`
		Frequency   *string `json:"frequency"`
		NextRun     *string `json:"nextRun"`
		AnchorDay   *int    `json:"anchorDay"`
		IsActive    *bool   `json:"isActive"`
	}
)

func toTransactionView(t core.Transaction) transactionView {
	v := transactionView{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Note:        t.Note,
		IsExpense:   t.IsExpense,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if !t.Date.IsZero() {
		d := t.Date
		v.Date = &d
	}
	return v
}

func toTransactionViews(txns []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionView(t))
	}
	return out
}

func toCategoryViews(cats []core.Category) []categoryView {
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{
			ID:            c.ID,
			Name:          c.Name,
			MonthlyBudget: c.MonthlyBudget,
			Color:         c.Color,
			Description:   c.Description,
		})
	}
	return out
}

func toStatusView(s core.BudgetStatus) budgetStatusView {
	return budgetStatusView{
		Spent:        s.Spent,
		Budget:       s.Budget,
		Percentage:   s.Percentage,
		Remaining:    s.Remaining,
		IsOverBudget: s.IsOverBudget,
		WarningLevel: s.WarningLevel,
	}
}

func toCategoryBudgetViews(rows []core.CategoryBudgetStatus) []categoryBudgetView {
	out := make([]categoryBudgetView, 0, len(rows))
	for _, c := range rows {
		out = append(out, categoryBudgetView{
			CategoryID:       c.CategoryID,
			CategoryName:     c.CategoryName,
			budgetStatusView: toStatusView(c.BudgetStatus),
		})
	}
	return out
}

func toSummaryView(r services.BudgetReport) summaryView {
	s := r.Summary
	return summaryView{
		Period:              r.Period.Label(),
		TotalBudget:         s.TotalBudget,
		CategoryBudgetTotal: s.CategoryBudgetTotal,
		TotalSpent:          s.TotalSpent,
		TotalRemaining:      s.TotalRemaining,
		Percentage:          s.Percentage,
		WarningLevel:        s.WarningLevel,
		CategoryBreakdown:   toCategoryBudgetViews(s.CategoryBreakdown),
	}
}

func toTotalsView(t core.PeriodTotals) totalsView {
	return totalsView{Spent: t.Spent, Income: t.Income, Net: t.Net}
}

func toComparisonView(c core.MonthComparison) comparisonView {
	v := comparisonView{
		CurrentMonth:  toTotalsView(c.CurrentMonth),
		PreviousMonth: toTotalsView(c.PreviousMonth),
	}
	v.Changes.SpentChange = c.Changes.SpentChange
	v.Changes.SpentChangePercent = c.Changes.SpentChangePercent
	v.Changes.IncomeChange = c.Changes.IncomeChange
	v.Changes.IncomeChangePercent = c.Changes.IncomeChangePercent
	return v
}

func toDashboardView(d services.Dashboard) dashboardView {
	v := dashboardView{
		TotalIncome:  d.Stats.TotalIncome,
		TotalExpense: d.Stats.TotalExpense,
		Balance:      d.Stats.Balance,
		Breakdown:    make([]categoryAmountView, 0, len(d.Breakdown)),
		Weekly:       make([]dayActivityView, 0, len(d.Weekly)),
		Recent:       toTransactionViews(d.Recent),
	}
	for _, c := range d.Breakdown {
		v.Breakdown = append(v.Breakdown, categoryAmountView{Name: c.Name, Amount: c.Amount})
	}
	for _, day := range d.Weekly {
		v.Weekly = append(v.Weekly, dayActivityView{
			Date: day.Date, DayName: day.DayName, Income: day.Income, Expense: day.Expense,
		})
	}
	return v
}

func toFormatView(c format.Config) formatView {
	return formatView{Currency: c.Currency, DateFormat: c.DateFormat}
}

func toRecurringView(re core.RecurringExpense) recurringView {
	return recurringView{
		ID:          re.ID,
		Amount:      re.Amount,
		Category:    re.Category,
		Description: re.Description,
		Note:        re.Note,
		Frequency:   re.Frequency,
		NextRun:     re.NextRun,
		AnchorDay:   re.AnchorDay,
		IsActive:    re.IsActive,
		CreatedAt:   re.CreatedAt,
		UpdatedAt:   re.UpdatedAt,
	}
}

func toRecurringViews(items []core.RecurringExpense) []recurringView {
	out := make([]recurringView, 0, len(items))
	for _, re := range items {
		out = append(out, toRecurringView(re))
	}
	return out
}
