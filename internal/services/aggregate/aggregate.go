package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/aws-costs-tui/internal/models"
)

// TopServices is the number of services kept in a trend matrix.
const TopServices = 8

var hundred = decimal.NewFromInt(100)

// Aggregator builds view models from reports. Colours are drawn from the
// shared assignment so a service keeps its colour across views.
type Aggregator struct {
	colors *ColorAssignment
}

// New returns an aggregator using colors. A nil assignment gets a fresh one.
func New(colors *ColorAssignment) *Aggregator {
	if colors == nil {
		colors = NewColorAssignment()
	}
	return &Aggregator{colors: colors}
}

// Summarize ranks the services of report by amount. It never fails; a nil or
// empty report yields an empty summary.
func (a *Aggregator) Summarize(report *models.CostReport) *models.PeriodSummary {
	summary := &models.PeriodSummary{
		Total:    decimal.Zero,
		Currency: models.DefaultCurrency,
		Services: []models.RankedService{},
	}
	if report == nil {
		return summary
	}
	summary.Period = report.Period
	summary.Total = report.Total
	if report.Currency != "" {
		summary.Currency = report.Currency
	}

	services := make([]models.ServiceCost, len(report.Services))
	copy(services, report.Services)
	sortByAmount(services)

	maxAmount := decimal.Zero
	if len(services) > 0 {
		maxAmount = services[0].Amount
	}

	for i, s := range services {
		summary.Services = append(summary.Services, models.RankedService{
			Rank:           i + 1,
			Name:           s.Name,
			Amount:         s.Amount,
			PercentOfTotal: percentOf(s.Amount, report.Total),
			ColorIndex:     a.colors.Index(s.Name),
			BarFraction:    fractionOf(s.Amount, maxAmount),
		})
	}
	return summary
}

// BuildTrend arranges monthly reports, oldest first, into a grid of the top
// services by summed spend along with per-month totals and changes.
func (a *Aggregator) BuildTrend(reports []*models.CostReport) *models.TrendMatrix {
	matrix := &models.TrendMatrix{
		Months:        make([]models.DateRange, len(reports)),
		TopServices:   []string{},
		Colors:        make(map[string]int),
		Cells:         make(map[string][]decimal.Decimal),
		MonthlyTotals: make([]models.MonthlyTotal, len(reports)),
		Currency:      models.DefaultCurrency,
	}

	sums := make(map[string]decimal.Decimal)
	perMonth := make([]map[string]decimal.Decimal, len(reports))
	currencySet := false

	for i, r := range reports {
		perMonth[i] = make(map[string]decimal.Decimal)
		total := decimal.Zero
		if r != nil {
			matrix.Months[i] = r.Period
			total = r.Total
			if !currencySet && r.Currency != "" && !r.IsEmpty() {
				matrix.Currency = r.Currency
				currencySet = true
			}
			for _, s := range r.Services {
				perMonth[i][s.Name] = perMonth[i][s.Name].Add(s.Amount)
				sums[s.Name] = sums[s.Name].Add(s.Amount)
			}
		}
		matrix.MonthlyTotals[i] = models.MonthlyTotal{
			Period: matrix.Months[i],
			Total:  total,
		}
		if i > 0 {
			matrix.MonthlyTotals[i].Delta = Delta(matrix.MonthlyTotals[i-1].Total, total)
		}
	}

	ranked := make([]models.ServiceCost, 0, len(sums))
	for name, sum := range sums {
		ranked = append(ranked, models.ServiceCost{Name: name, Amount: sum})
	}
	sortByAmount(ranked)
	if len(ranked) > TopServices {
		ranked = ranked[:TopServices]
	}

	for _, s := range ranked {
		matrix.TopServices = append(matrix.TopServices, s.Name)
		matrix.Colors[s.Name] = a.colors.Index(s.Name)
		row := make([]decimal.Decimal, len(reports))
		for i := range reports {
			row[i] = perMonth[i][s.Name]
		}
		matrix.Cells[s.Name] = row
	}
	return matrix
}

// Delta returns the percentage change from prev to cur. It is absent when
// prev is zero.
func Delta(prev, cur decimal.Decimal) models.OptionalPercent {
	if prev.IsZero() {
		return models.OptionalPercent{}
	}
	return models.Percent(cur.Sub(prev).Mul(hundred).Div(prev).InexactFloat64())
}

// sortByAmount orders by amount descending, then name ascending.
func sortByAmount(services []models.ServiceCost) {
	sort.SliceStable(services, func(i, j int) bool {
		if c := services[i].Amount.Cmp(services[j].Amount); c != 0 {
			return c > 0
		}
		return services[i].Name < services[j].Name
	})
}

func percentOf(amount, total decimal.Decimal) float64 {
	if total.Sign() <= 0 {
		return 0
	}
	return amount.Mul(hundred).Div(total).InexactFloat64()
}

func fractionOf(amount, maxAmount decimal.Decimal) float64 {
	if maxAmount.Sign() <= 0 || amount.Sign() <= 0 {
		return 0
	}
	f := amount.Div(maxAmount).InexactFloat64()
	if f > 1 {
		return 1
	}
	return f
}
