package core

import "time"

// Clock supplies the current time. Period selection is the only place that
// reads the wall clock, so tests inject a FixedClock.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Period is a calendar month as the half-open range [Start, End).
// End is the first instant of the next month, so the last representable
// instant of the month is still inside.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside the period. Zero times never match.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(p.Start) && t.Before(p.End)
}

// Previous returns the calendar month immediately before p.
func (p Period) Previous() Period {
	start := p.Start.AddDate(0, -1, 0)
	return Period{Start: start, End: p.Start}
}

// Label formats the period as YYYY-MM.
func (p Period) Label() string {
	return p.Start.Format("2006-01")
}

// Filter returns the transactions dated inside p.
func (p Period) Filter(txns []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

type PeriodSelector struct {
	Clock Clock
}

func NewPeriodSelector(clock Clock) PeriodSelector {
	if clock == nil {
		clock = SystemClock{}
	}
	return PeriodSelector{Clock: clock}
}

func (s PeriodSelector) clock() Clock {
	if s.Clock == nil {
		return SystemClock{}
	}
	return s.Clock
}

func (s PeriodSelector) Current() Period {
	return MonthOf(s.clock().Now())
}

func (s PeriodSelector) Previous() Period {
	return s.Current().Previous()
}

func (s PeriodSelector) CurrentMonth(txns []Transaction) []Transaction {
	return s.Current().Filter(txns)
}

func (s PeriodSelector) PreviousMonth(txns []Transaction) []Transaction {
	return s.Previous().Filter(txns)
}
