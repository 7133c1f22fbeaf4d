package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Stats is the income/expense headline of the dashboard.
type Stats struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// DayActivity holds income and expense of one local calendar day.
type DayActivity struct {
	Date    string // YYYY-MM-DD
	DayName string // Mon, Tue...
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func ComputeStats(txns []Transaction) Stats {
	s := Stats{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, t := range txns {
		if t.IsExpense {
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		} else {
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// ExpenseBreakdown totals expenses per category in first-seen order.
func ExpenseBreakdown(txns []Transaction) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	for _, t := range txns {
		if !t.IsExpense {
			continue
		}
		i, ok := idx[t.Category]
		if !ok {
			i = len(out)
			idx[t.Category] = i
			out = append(out, CategoryAmount{Name: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// WeeklyActivity buckets txns into the seven days of the current week,
// Sunday first, using the clock's location to decide the local day.
func WeeklyActivity(txns []Transaction, clock Clock) []DayActivity {
	now := clock.Now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	sunday := today.AddDate(0, 0, -int(today.Weekday()))

	days := make([]DayActivity, 7)
	idx := make(map[string]int, 7)
	for i := range days {
		d := sunday.AddDate(0, 0, i)
		key := d.Format("2006-01-02")
		days[i] = DayActivity{
			Date:    key,
			DayName: d.Format("Mon"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		idx[key] = i
	}

	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		i, ok := idx[t.Date.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		if t.IsExpense {
			days[i].Expense = days[i].Expense.Add(t.Amount)
		} else {
			days[i].Income = days[i].Income.Add(t.Amount)
		}
	}
	return days
}
