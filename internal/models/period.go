// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// DateRange is a half-open span of UTC calendar dates [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, truncating both to UTC midnight.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: toDate(start), End: toDate(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, fmt.Errorf("invalid date range %s..%s: start must be before end",
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return r, nil
}

// MonthRange returns the full calendar month containing t.
func MonthRange(t time.Time) DateRange {
	start := FirstOfMonth(t)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// MonthToDate returns the month containing now, ending at the day after now
// so that today's partial spend is included. The end never crosses into the
// following month's boundary.
func MonthToDate(now time.Time) DateRange {
	start := FirstOfMonth(now)
	end := toDate(now).AddDate(0, 0, 1)
	if next := start.AddDate(0, 1, 0); end.After(next) {
		end = next
	}
	return DateRange{Start: start, End: end}
}

// PreviousMonth returns the full calendar month before the one containing now.
func PreviousMonth(now time.Time) DateRange {
	end := FirstOfMonth(now)
	return DateRange{Start: end.AddDate(0, -1, 0), End: end}
}

// TrailingMonths returns n monthly ranges ending with the current month,
// oldest first. The current month is month-to-date.
func TrailingMonths(now time.Time, n int) []DateRange {
	if n <= 0 {
		return nil
	}
	first := FirstOfMonth(now)
	ranges := make([]DateRange, 0, n)
	for i := n - 1; i > 0; i-- {
		ranges = append(ranges, MonthRange(first.AddDate(0, -i, 0)))
	}
	return append(ranges, MonthToDate(now))
}

// FirstOfMonth returns midnight UTC on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func toDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartString returns the start date in wire format.
func (r DateRange) StartString() string {
	return r.Start.Format(DateLayout)
}

// EndString returns the end date in wire format.
func (r DateRange) EndString() string {
	return r.End.Format(DateLayout)
}

// Label returns the month and year of the range start, e.g. "January 2026".
func (r DateRange) Label() string {
	return r.Start.Format("January 2006")
}

// ShortLabel returns the abbreviated month name of the range start.
func (r DateRange) ShortLabel() string {
	return r.Start.Format("Jan")
}

// String returns the range as "start..end".
func (r DateRange) String() string {
	return r.StartString() + ".." + r.EndString()
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}
