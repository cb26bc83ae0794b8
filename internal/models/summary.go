package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OptionalPercent is a percentage that may be absent, e.g. a month-over-month
// change with no prior month to compare against.
type OptionalPercent struct {
	Value float64
	Valid bool
}

// Percent returns a present OptionalPercent.
func Percent(v float64) OptionalPercent {
	return OptionalPercent{Value: v, Valid: true}
}

// String formats the value as a signed percentage, or "—" when absent.
func (p OptionalPercent) String() string {
	if !p.Valid {
		return "—"
	}
	return fmt.Sprintf("%+.1f%%", p.Value)
}

// RankedService is one row of a period summary.
type RankedService struct {
	Rank           int
	Name           string
	Amount         decimal.Decimal
	PercentOfTotal float64
	ColorIndex     int
	BarFraction    float64
}

// PeriodSummary is a report ordered and annotated for display.
type PeriodSummary struct {
	Period   DateRange
	Total    decimal.Decimal
	Currency string
	Services []RankedService
}

// Len returns the number of ranked services.
func (s *PeriodSummary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Services)
}

// MonthlyTotal is the total spend of one trend month and its change from the
// month before.
type MonthlyTotal struct {
	Period DateRange
	Total  decimal.Decimal
	Delta  OptionalPercent
}

// TrendMatrix holds the top services across a run of months.
type TrendMatrix struct {
	Months        []DateRange
	TopServices   []string
	Colors        map[string]int
	Cells         map[string][]decimal.Decimal
	MonthlyTotals []MonthlyTotal
	Currency      string
}

// Cell returns the amount for service in month i, zero when absent.
func (m *TrendMatrix) Cell(service string, i int) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	row, ok := m.Cells[service]
	if !ok || i < 0 || i >= len(row) {
		return decimal.Zero
	}
	return row[i]
}

// Len returns the number of monthly totals.
func (m *TrendMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.MonthlyTotals)
}

// Snapshot is the full result of one refresh, shared read-only with views.
type Snapshot struct {
	Current   *PeriodSummary
	Previous  *PeriodSummary
	Trend     *TrendMatrix
	FetchedAt time.Time
	Warnings  []string
}
