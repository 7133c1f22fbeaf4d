package services

import (
	"fmt"
	"time"

	"xpense/internal/core"
)

// Scheduler computes the run that follows a given one for a frequency.
// anchorDay is the preferred day of month; zero means the day of from.
type Scheduler interface {
	Next(from time.Time, anchorDay int) time.Time
}

type DailyScheduler struct{}

func (DailyScheduler) Next(from time.Time, _ int) time.Time { return from.AddDate(0, 0, 1) }

type WeeklyScheduler struct{}

func (WeeklyScheduler) Next(from time.Time, _ int) time.Time { return from.AddDate(0, 0, 7) }

// MonthlyScheduler lands on the anchor day, clamped to the last day of
// shorter months. With anchor 31, Jan 31 is followed by Feb 28 and then
// Mar 31.
type MonthlyScheduler struct{}

func (MonthlyScheduler) Next(from time.Time, anchorDay int) time.Time {
	return addMonthsClamped(from, 1, anchorDay)
}

// YearlyScheduler moves Feb 29 to Feb 28 in non-leap years and back to
// Feb 29 in the next leap year.
type YearlyScheduler struct{}

func (YearlyScheduler) Next(from time.Time, anchorDay int) time.Time {
	return addMonthsClamped(from, 12, anchorDay)
}

func addMonthsClamped(t time.Time, months, anchorDay int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	day := anchorDay
	if day <= 0 {
		day = t.Day()
	}
	if day > lastDay {
		day = lastDay
	}
	return target.AddDate(0, 0, day-1)
}

var schedulers = map[core.Frequency]Scheduler{
	core.Daily:   DailyScheduler{},
	core.Weekly:  WeeklyScheduler{},
	core.Monthly: MonthlyScheduler{},
	core.Yearly:  YearlyScheduler{},
}

func GetScheduler(f core.Frequency) (Scheduler, error) {
	s, ok := schedulers[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return s, nil
}

// NextRun returns the run after from for frequency f.
func NextRun(f core.Frequency, from time.Time, anchorDay int) (time.Time, error) {
	s, err := GetScheduler(f)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(from, anchorDay), nil
}
