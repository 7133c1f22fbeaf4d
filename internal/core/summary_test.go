package core

import (
	"testing"
	"time"
)

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]Transaction{expense("Food", "30"), income("Salary", "100"), expense("Rent", "50")})
	if !s.TotalIncome.Equal(dec("100")) || !s.TotalExpense.Equal(dec("80")) || !s.Balance.Equal(dec("20")) {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestExpenseBreakdown(t *testing.T) {
	rows := ExpenseBreakdown([]Transaction{
		expense("Food", "10"), expense("Rent", "500"), income("Salary", "1"), expense("Food", "5"),
	})
	if len(rows) != 2 || rows[0].Name != "Food" || !rows[0].Amount.Equal(dec("15")) || rows[1].Name != "Rent" {
		t.Fatalf("unexpected breakdown: %+v", rows)
	}
}

func TestWeeklyActivity(t *testing.T) {
	// Wednesday 2025-03-12
	clock := FixedClock{T: time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)}
	mon := at(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	sat := income("Salary", "100")
	sat.Date = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	lastWeek := at(time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC))

	days := WeeklyActivity([]Transaction{mon, sat, lastWeek, at(time.Time{})}, clock)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2025-03-09" || days[0].DayName != "Sun" {
		t.Fatalf("week must start on Sunday, got %+v", days[0])
	}
	if !days[1].Expense.Equal(dec("1")) {
		t.Fatalf("expected Monday expense 1, got %s", days[1].Expense)
	}
	if !days[6].Income.Equal(dec("100")) {
		t.Fatalf("expected Saturday income 100, got %s", days[6].Income)
	}
}
