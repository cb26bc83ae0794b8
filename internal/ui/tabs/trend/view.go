package trend

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/aws-costs-tui/internal/app"
	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/services/costexplorer"
	"github.com/j-veylop/aws-costs-tui/internal/ui/components"
	"github.com/j-veylop/aws-costs-tui/internal/ui/styles"
)

const (
	lineChartHeight = 8
	barChartHeight  = 12
	nameColumnWidth = 26
	monthColumn     = 12
)

// View renders the trend tab.
func (m *Model) View() string {
	matrix := m.matrix()

	var content string
	switch {
	case m.state.GetSnapshot() == nil && (m.state.IsInitialLoading() || m.state.IsLoading()):
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	case m.state.GetSnapshot() == nil && m.state.GetError() != nil:
		err := m.state.GetError()
		content = components.RenderErrorPanel(err, costexplorer.Hint(err))
	case matrix == nil || matrix.Len() == 0:
		content = styles.HelpStyle.Render("No trend data available.")
	default:
		content = m.renderTrend(matrix)
	}

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) contentWidth() int {
	return max(m.width-2, 40)
}

func (m *Model) renderTrend(matrix *models.TrendMatrix) string {
	sections := []string{
		m.renderTitle(matrix),
		m.renderTotalsChart(matrix),
		"",
		styles.SubTitleStyle.Render("Top services"),
		m.renderServiceBars(matrix),
		components.RenderLegendWrapped(m.legend(matrix), m.contentWidth()),
		"",
		m.renderTable(matrix),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTitle(matrix *models.TrendMatrix) string {
	first, last := matrix.Months[0], matrix.Months[len(matrix.Months)-1]
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(fmt.Sprintf("Spend over %d months", len(matrix.Months))),
		styles.HelpStyle.Render(first.Label()+" to "+last.Label()+" (month to date)"),
	)
}

func (m *Model) renderTotalsChart(matrix *models.TrendMatrix) string {
	totals := make([]float64, 0, matrix.Len())
	for _, mt := range matrix.MonthlyTotals {
		v, _ := mt.Total.Float64()
		totals = append(totals, v)
	}
	caption := "Monthly total (" + matrix.Currency + ")"
	return components.RenderLineChart(totals, m.contentWidth()-12, lineChartHeight, caption)
}

func (m *Model) renderServiceBars(matrix *models.TrendMatrix) string {
	labels := make([]string, 0, len(matrix.Months))
	for _, month := range matrix.Months {
		labels = append(labels, month.ShortLabel())
	}

	series := make([]components.BarSeries, 0, len(matrix.TopServices))
	for _, svc := range matrix.TopServices {
		values := make([]float64, len(matrix.Months))
		for i := range matrix.Months {
			values[i], _ = matrix.Cell(svc, i).Float64()
		}
		series = append(series, components.BarSeries{
			Name:   svc,
			Color:  styles.ServiceColor(matrix.Colors[svc]),
			Values: values,
		})
	}

	width := min(m.contentWidth(), len(labels)*10)
	return components.RenderStackedBars(labels, series, width, barChartHeight)
}

func (m *Model) legend(matrix *models.TrendMatrix) []components.LegendItem {
	items := make([]components.LegendItem, 0, len(matrix.TopServices))
	for _, svc := range matrix.TopServices {
		items = append(items, components.LegendItem{
			Label: components.ShortenServiceName(svc, 24),
			Color: styles.ServiceColor(matrix.Colors[svc]),
		})
	}
	return items
}

// visibleMonths returns the index of the first month column that fits.
// Older months are dropped from the table first.
func (m *Model) visibleMonths(matrix *models.TrendMatrix) int {
	fit := max((m.contentWidth()-nameColumnWidth-2)/monthColumn, 1)
	return max(len(matrix.Months)-fit, 0)
}

func (m *Model) renderTable(matrix *models.TrendMatrix) string {
	from := m.visibleMonths(matrix)

	header := []string{pad("", 2), pad("Service", nameColumnWidth)}
	for _, month := range matrix.Months[from:] {
		header = append(header, padLeft(month.ShortLabel()+" "+month.Start.Format("06"), monthColumn))
	}
	rows := []string{styles.TableHeaderStyle.Render(strings.Join(header, ""))}

	selected := -1
	if nav := m.state.GetNavigation(); nav.ActiveTab == app.TabTrend {
		selected = nav.SelectedRow
	}

	for i, svc := range matrix.TopServices {
		rows = append(rows, m.renderServiceRow(matrix, svc, from, i == selected))
	}

	rows = append(rows, m.renderTotalsRow(matrix, from), m.renderDeltaRow(matrix, from))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderServiceRow(matrix *models.TrendMatrix, svc string, from int, selected bool) string {
	color := styles.ServiceColor(matrix.Colors[svc])
	cursor := pad("", 2)
	name := pad(components.ShortenServiceName(svc, nameColumnWidth-3), nameColumnWidth-2)
	if selected {
		cursor = lipgloss.NewStyle().Foreground(styles.Primary).Render("▸ ")
		name = styles.TableSelectedStyle.Render(name)
	}

	cells := []string{cursor, lipgloss.NewStyle().Foreground(color).Render("■") + " ", name}
	for i := from; i < len(matrix.Months); i++ {
		amount := matrix.Cell(svc, i)
		f, _ := amount.Float64()
		cells = append(cells, styles.GetCostStyle(f).Render(
			padLeft(components.FormatAmount(amount, matrix.Currency), monthColumn)))
	}
	return strings.Join(cells, "")
}

func (m *Model) renderTotalsRow(matrix *models.TrendMatrix, from int) string {
	cells := []string{pad("", 2), styles.LabelStyle.Render(pad("Total", nameColumnWidth))}
	for _, mt := range matrix.MonthlyTotals[from:] {
		cells = append(cells, styles.ValueStyle.Render(
			padLeft(components.FormatAmount(mt.Total, matrix.Currency), monthColumn)))
	}
	return strings.Join(cells, "")
}

func (m *Model) renderDeltaRow(matrix *models.TrendMatrix, from int) string {
	cells := []string{pad("", 2), styles.LabelStyle.Render(pad("Change", nameColumnWidth))}
	for _, mt := range matrix.MonthlyTotals[from:] {
		cells = append(cells, styles.GetDeltaStyle(mt.Delta.Value, mt.Delta.Valid).Render(
			padLeft(mt.Delta.String(), monthColumn)))
	}
	return strings.Join(cells, "")
}

func pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}

func padLeft(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Align(lipgloss.Right).Render(s)
}
