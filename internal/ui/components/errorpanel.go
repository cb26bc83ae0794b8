package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/aws-costs-tui/internal/ui/styles"
)

// RenderErrorPanel renders a failed refresh with an optional remediation hint.
func RenderErrorPanel(err error, hint string) string {
	lines := []string{
		styles.ErrorTextStyle.Bold(true).Render("Could not load costs"),
		"",
		styles.ErrorTextStyle.Render(err.Error()),
	}
	if hint != "" {
		lines = append(lines, "", styles.HelpStyle.Render("Hint: "+hint))
	}
	lines = append(lines, "", styles.HelpStyle.Render("Press r to try again."))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
