package aggregate

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/aws-costs-tui/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func report(services map[string]string, order ...string) *models.CostReport {
	r := models.NewEmptyReport(models.MonthRange(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	for _, name := range order {
		amount := d(services[name])
		r.Services = append(r.Services, models.ServiceCost{Name: name, Amount: amount, Unit: "USD"})
		r.Total = r.Total.Add(amount)
	}
	return r
}

func totalReport(month int, total string) *models.CostReport {
	r := models.NewEmptyReport(models.MonthRange(time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC)))
	r.Total = d(total)
	if !r.Total.IsZero() {
		r.Services = []models.ServiceCost{{Name: "EC2", Amount: r.Total, Unit: "USD"}}
	}
	return r
}

func TestSummarize_Scenario(t *testing.T) {
	r := report(map[string]string{"S3": "156.78", "EC2": "523.45", "RDS": "312.00"}, "S3", "EC2", "RDS")
	if !r.Total.Equal(d("992.23")) {
		t.Fatalf("fixture total = %s", r.Total)
	}

	s := New(nil).Summarize(r)

	want := []struct {
		name    string
		percent float64
	}{
		{"EC2", 52.75},
		{"RDS", 31.45},
		{"S3", 15.80},
	}
	if len(s.Services) != len(want) {
		t.Fatalf("len = %d", len(s.Services))
	}
	sum := 0.0
	for i, w := range want {
		got := s.Services[i]
		if got.Name != w.name || got.Rank != i+1 {
			t.Errorf("row %d = %s #%d, want %s #%d", i, got.Name, got.Rank, w.name, i+1)
		}
		if math.Abs(got.PercentOfTotal-w.percent) > 0.01 {
			t.Errorf("%s percent = %.4f, want ≈%.2f", got.Name, got.PercentOfTotal, w.percent)
		}
		sum += got.PercentOfTotal
	}
	if math.Abs(sum-100) > 0.1 {
		t.Errorf("percent sum = %f", sum)
	}
	if s.Services[0].BarFraction != 1 {
		t.Errorf("top bar fraction = %f, want 1", s.Services[0].BarFraction)
	}
	if f := s.Services[2].BarFraction; math.Abs(f-156.78/523.45) > 1e-9 {
		t.Errorf("S3 bar fraction = %f", f)
	}
}

func TestSummarize_TiesByName(t *testing.T) {
	r := report(map[string]string{"b": "10", "a": "10", "c": "20"}, "b", "a", "c")
	s := New(nil).Summarize(r)
	got := []string{s.Services[0].Name, s.Services[1].Name, s.Services[2].Name}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestSummarize_ZeroTotal(t *testing.T) {
	r := report(map[string]string{"EC2": "0", "S3": "0"}, "EC2", "S3")
	s := New(nil).Summarize(r)
	for _, svc := range s.Services {
		if svc.PercentOfTotal != 0 || svc.BarFraction != 0 {
			t.Errorf("%s = %+v, want zero percent and bar", svc.Name, svc)
		}
	}
}

func TestSummarize_NilAndEmpty(t *testing.T) {
	a := New(nil)
	if s := a.Summarize(nil); s.Len() != 0 || !s.Total.IsZero() {
		t.Errorf("Summarize(nil) = %+v", s)
	}
	if s := a.Summarize(models.NewEmptyReport(models.DateRange{})); s.Len() != 0 {
		t.Errorf("Summarize(empty) = %+v", s)
	}
}

func TestSummarize_SortedProperty(t *testing.T) {
	names := make([]string, 0, 20)
	amounts := make(map[string]string)
	for i := range 20 {
		name := fmt.Sprintf("svc-%02d", i)
		names = append(names, name)
		amounts[name] = fmt.Sprintf("%d.%02d", (i*37)%101, (i*13)%100)
	}
	s := New(nil).Summarize(report(amounts, names...))

	sum := 0.0
	for i, svc := range s.Services {
		sum += svc.PercentOfTotal
		if svc.ColorIndex < 0 || svc.ColorIndex >= PaletteSize {
			t.Errorf("color index %d out of range", svc.ColorIndex)
		}
		if i > 0 && svc.Amount.GreaterThan(s.Services[i-1].Amount) {
			t.Errorf("row %d not sorted", i)
		}
	}
	if math.Abs(sum-100) > 0.1 {
		t.Errorf("percent sum = %f", sum)
	}
}

func TestColors_SharedAcrossViews(t *testing.T) {
	colors := NewColorAssignment()
	a := New(colors)

	current := a.Summarize(report(map[string]string{"EC2": "5", "S3": "3"}, "EC2", "S3"))
	previous := a.Summarize(report(map[string]string{"S3": "9", "RDS": "1"}, "S3", "RDS"))

	colorOf := func(s *models.PeriodSummary, name string) int {
		for _, svc := range s.Services {
			if svc.Name == name {
				return svc.ColorIndex
			}
		}
		t.Fatalf("%s missing", name)
		return -1
	}
	if colorOf(current, "S3") != colorOf(previous, "S3") {
		t.Error("S3 has different colours across views")
	}
	if colorOf(current, "EC2") != 0 || colorOf(current, "S3") != 1 || colorOf(previous, "RDS") != 2 {
		t.Error("colours not assigned in first-seen order")
	}
}

func TestColorAssignment_Wraps(t *testing.T) {
	c := NewColorAssignment()
	for i := range PaletteSize {
		c.Index(fmt.Sprintf("s%d", i))
	}
	if got := c.Index("overflow"); got != 0 {
		t.Errorf("13th service slot = %d, want 0", got)
	}
	if got := c.Index("s3"); got != 3 {
		t.Errorf("existing slot = %d, want 3", got)
	}
	if c.Len() != PaletteSize+1 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestBuildTrend_Deltas(t *testing.T) {
	totals := []string{"100", "100", "150", "0", "50", "200"}
	reports := make([]*models.CostReport, len(totals))
	for i, total := range totals {
		reports[i] = totalReport(i+1, total)
	}

	m := New(nil).BuildTrend(reports)

	want := []models.OptionalPercent{
		{}, models.Percent(0), models.Percent(50), models.Percent(-100), {}, models.Percent(300),
	}
	if len(m.MonthlyTotals) != 6 {
		t.Fatalf("len(MonthlyTotals) = %d", len(m.MonthlyTotals))
	}
	for i, w := range want {
		got := m.MonthlyTotals[i].Delta
		if got.Valid != w.Valid || math.Abs(got.Value-w.Value) > 1e-9 {
			t.Errorf("delta[%d] = %v, want %v", i, got, w)
		}
	}
	if m.Months[0].Start.Month() != time.January || m.Months[5].Start.Month() != time.June {
		t.Error("months not kept oldest first")
	}
}

func TestBuildTrend_TopEight(t *testing.T) {
	reports := make([]*models.CostReport, 6)
	for i := range reports {
		names := make([]string, 0, 10)
		amounts := make(map[string]string)
		for s := range 10 {
			name := fmt.Sprintf("svc-%d", s)
			names = append(names, name)
			amounts[name] = fmt.Sprintf("%d", (s+1)*10)
		}
		// tie-a and tie-b tie with svc-1, all below the cutoff
		names = append(names, "tie-b", "tie-a")
		amounts["tie-b"] = "20"
		amounts["tie-a"] = "20"
		reports[i] = report(amounts, names...)
	}

	m := New(nil).BuildTrend(reports)
	if len(m.TopServices) != TopServices {
		t.Fatalf("len(TopServices) = %d, want %d", len(m.TopServices), TopServices)
	}
	want := []string{"svc-9", "svc-8", "svc-7", "svc-6", "svc-5", "svc-4", "svc-3", "svc-2"}
	for i := range want {
		if m.TopServices[i] != want[i] {
			t.Errorf("TopServices = %v, want %v", m.TopServices, want)
			break
		}
	}
	for _, name := range m.TopServices {
		if len(m.Cells[name]) != 6 {
			t.Errorf("%s has %d cells", name, len(m.Cells[name]))
		}
		if _, ok := m.Colors[name]; !ok {
			t.Errorf("%s has no colour", name)
		}
	}
}

func TestBuildTrend_TieBreakAtCutoff(t *testing.T) {
	amounts := map[string]string{
		"a1": "90", "a2": "80", "a3": "70", "a4": "60", "a5": "50", "a6": "40", "a7": "30",
		"zeta": "10", "alpha": "10",
	}
	r := report(amounts, "a1", "a2", "a3", "a4", "a5", "a6", "a7", "zeta", "alpha")
	m := New(nil).BuildTrend([]*models.CostReport{r})
	if last := m.TopServices[len(m.TopServices)-1]; last != "alpha" {
		t.Errorf("last top service = %q, want alpha", last)
	}
}

func TestBuildTrend_MissingCellsAreZero(t *testing.T) {
	jan := report(map[string]string{"EC2": "10"}, "EC2")
	feb := report(map[string]string{"S3": "5"}, "S3")
	m := New(nil).BuildTrend([]*models.CostReport{jan, feb})

	if !m.Cell("EC2", 1).IsZero() || !m.Cell("S3", 0).IsZero() {
		t.Error("absent service/month should be zero")
	}
	if !m.Cell("EC2", 0).Equal(d("10")) {
		t.Errorf("EC2 jan = %s", m.Cell("EC2", 0))
	}
}

func TestBuildTrend_Empty(t *testing.T) {
	m := New(nil).BuildTrend(nil)
	if len(m.TopServices) != 0 || len(m.MonthlyTotals) != 0 {
		t.Errorf("BuildTrend(nil) = %+v", m)
	}
	m = New(nil).BuildTrend([]*models.CostReport{nil, totalReport(2, "5")})
	if m.MonthlyTotals[1].Delta.Valid {
		t.Error("delta after a missing month should be absent")
	}
}

func TestDelta(t *testing.T) {
	if Delta(d("0"), d("50")).Valid {
		t.Error("delta from zero should be absent")
	}
	if got := Delta(d("200"), d("100")); !got.Valid || got.Value != -50 {
		t.Errorf("Delta(200,100) = %v", got)
	}
}
