package core

import "github.com/shopspring/decimal"

type (
	PeriodTotals struct {
		Spent  decimal.Decimal
		Income decimal.Decimal
		Net    decimal.Decimal
	}

	PeriodChanges struct {
		SpentChange         decimal.Decimal
		SpentChangePercent  float64
		IncomeChange        decimal.Decimal
		IncomeChangePercent float64
	}

	MonthComparison struct {
		CurrentMonth  PeriodTotals
		PreviousMonth PeriodTotals
		Changes       PeriodChanges
	}
)

// Totals sums spending and income of txns.
func Totals(txns []Transaction) PeriodTotals {
	spent, income := decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch {
		case t.IsSpend():
			spent = spent.Add(t.Amount)
		case !t.IsExpense:
			income = income.Add(t.Amount)
		}
	}
	return PeriodTotals{Spent: spent, Income: income, Net: income.Sub(spent)}
}

// changePercent going from nothing to something is reported as a 100% increase.
func changePercent(current, previous decimal.Decimal) float64 {
	switch {
	case previous.IsPositive():
		return Ratio(current.Sub(previous), previous)
	case current.IsPositive():
		return 100
	default:
		return 0
	}
}

// CompareMonths computes totals for both periods and the deltas between them.
func CompareMonths(current, previous []Transaction) MonthComparison {
	cur, prev := Totals(current), Totals(previous)
	return MonthComparison{
		CurrentMonth:  cur,
		PreviousMonth: prev,
		Changes: PeriodChanges{
			SpentChange:         cur.Spent.Sub(prev.Spent),
			SpentChangePercent:  changePercent(cur.Spent, prev.Spent),
			IncomeChange:        cur.Income.Sub(prev.Income),
			IncomeChangePercent: changePercent(cur.Income, prev.Income),
		},
	}
}
