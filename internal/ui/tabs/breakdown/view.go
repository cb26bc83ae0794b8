package breakdown

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

// Fixed column widths. The service name takes what is left.
const (
	cursorWidth  = 2
	rankWidth    = 4
	swatchWidth  = 2
	costWidth    = 14
	percentWidth = 8
	gapWidth     = 2
	minNameWidth = 10
)

// View renders the breakdown tab.
func (m *Model) View() string {
	summary := m.summary()

	var content string
	switch {
	case summary == nil && (m.state.IsInitialLoading() || m.state.IsLoading()):
		return m.renderLoading()
	case summary == nil && m.state.GetError() != nil:
		content = components.RenderErrorPanel(m.state.GetError(), costexplorer.Hint(m.state.GetError()))
	case summary == nil:
		content = styles.HelpStyle.Render("No cost data yet. Press r to refresh.")
	default:
		content = lipgloss.JoinVertical(lipgloss.Left,
			m.renderSummaryCard(summary),
			m.renderTable(summary),
		)
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderLoading() string {
	s := m.spinner
	if p := m.state.GetProgress(); p.Total > 0 {
		s.SetLabel(fmt.Sprintf("Fetching %s (%d/%d)...", p.Label, p.Step, p.Total))
	}
	return components.RenderSpinnerCentered(s, m.width, m.height)
}

func (m *Model) contentWidth() int {
	return max(m.width-2, 40)
}

func (m *Model) renderSummaryCard(summary *models.PeriodSummary) string {
	kind := "full month"
	if m.period == app.TabCurrent {
		kind = "month to date"
	}

	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	title := fmt.Sprintf("%s %s %s",
		icon,
		styles.CardTitleStyle.Render(summary.Period.Label()),
		styles.HelpStyle.Render("("+kind+")"),
	)

	total := fmt.Sprintf("%s %s",
		styles.LabelStyle.Render("Total"),
		styles.ValueStyle.Render(components.FormatAmount(summary.Total, summary.Currency)),
	)

	noun := "services"
	if summary.Len() == 1 {
		noun = "service"
	}
	details := styles.HelpStyle.Render(fmt.Sprintf("%d %s • %s • %s",
		summary.Len(), noun, summary.Currency, summary.Period.String()))

	return styles.CardStyle.
		Width(m.contentWidth() - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, total, details))
}

func (m *Model) barWidth() int {
	return min(max(m.contentWidth()/5, 6), 30)
}

func (m *Model) nameWidth() int {
	fixed := cursorWidth + rankWidth + swatchWidth + costWidth + percentWidth + gapWidth + m.barWidth()
	return max(m.contentWidth()-fixed, minNameWidth)
}

func (m *Model) renderTable(summary *models.PeriodSummary) string {
	if summary.Len() == 0 {
		return styles.HelpStyle.Render("No spend recorded for this period.")
	}

	nameWidth := m.nameWidth()
	header := styles.TableHeaderStyle.Render(strings.Join([]string{
		pad("", cursorWidth),
		pad("#", rankWidth),
		pad("", swatchWidth),
		pad("Service", nameWidth),
		padLeft("Cost", costWidth),
		padLeft("Share", percentWidth),
		pad("", gapWidth),
		pad("Distribution", m.barWidth()),
	}, ""))

	selected, offset := 0, 0
	if nav := m.state.GetNavigation(); nav.ActiveTab == m.period {
		selected, offset = nav.SelectedRow, nav.ScrollOffset
	}

	end := min(offset+m.visibleRows(), summary.Len())
	offset = min(offset, end)

	rows := []string{header}
	for i := offset; i < end; i++ {
		rows = append(rows, m.renderRow(summary.Services[i], summary.Currency, i == selected, nameWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderRow(svc models.RankedService, currency string, selected bool, nameWidth int) string {
	cursor := pad("", cursorWidth)
	name := pad(components.ShortenServiceName(svc.Name, nameWidth-1), nameWidth)
	if selected {
		cursor = lipgloss.NewStyle().Foreground(styles.Primary).Render("▸ ")
		name = styles.TableSelectedStyle.Render(name)
	}

	color := styles.ServiceColor(svc.ColorIndex)
	amount, _ := svc.Amount.Float64()

	return strings.Join([]string{
		cursor,
		styles.HelpStyle.Render(padLeft(fmt.Sprintf("%d", svc.Rank), rankWidth-1)) + " ",
		lipgloss.NewStyle().Foreground(color).Render("■") + " ",
		name,
		styles.GetCostStyle(amount).Render(padLeft(components.FormatAmount(svc.Amount, currency), costWidth)),
		padLeft(fmt.Sprintf("%.1f%%", svc.PercentOfTotal), percentWidth),
		pad("", gapWidth),
		m.bar.View(svc.BarFraction, color),
	}, "")
}

func pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}

func padLeft(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Align(lipgloss.Right).Render(s)
}
