// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the cost theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("214") // AWS orange
	Secondary = lipgloss.Color("39")  // Blue
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue
	Orange  = lipgloss.Color("208")

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// Palette holds one colour per service slot. Slot i of a ColorAssignment is
// drawn with Palette[i].
var Palette = []lipgloss.Color{
	lipgloss.Color("#FF9900"),
	lipgloss.Color("#1F77B4"),
	lipgloss.Color("#2CA02C"),
	lipgloss.Color("#D62728"),
	lipgloss.Color("#9467BD"),
	lipgloss.Color("#8C564B"),
	lipgloss.Color("#E377C2"),
	lipgloss.Color("#17BECF"),
	lipgloss.Color("#BCBD22"),
	lipgloss.Color("#7F7F7F"),
	lipgloss.Color("#AEC7E8"),
	lipgloss.Color("#FFBB78"),
}

// ServiceColor returns the palette colour for a colour slot.
func ServiceColor(index int) lipgloss.Color {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary)

// LabelStyle styles field labels inside cards.
var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// ValueStyle styles field values inside cards.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Bold(true)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// CostHighStyle for amounts above 1000.
var CostHighStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// CostElevatedStyle for amounts above 100.
var CostElevatedStyle = lipgloss.NewStyle().
	Foreground(Orange)

// CostModerateStyle for amounts above 10.
var CostModerateStyle = lipgloss.NewStyle().
	Foreground(Warning)

// CostLowStyle for everything else.
var CostLowStyle = lipgloss.NewStyle().
	Foreground(Success)

// GetCostStyle returns the style for an amount.
func GetCostStyle(amount float64) lipgloss.Style {
	switch {
	case amount > 1000:
		return CostHighStyle
	case amount > 100:
		return CostElevatedStyle
	case amount > 10:
		return CostModerateStyle
	default:
		return CostLowStyle
	}
}

// GetDeltaStyle returns the style for a month-over-month change in percent.
// Rising spend is red, falling spend green.
func GetDeltaStyle(percent float64, valid bool) lipgloss.Style {
	if !valid {
		return HelpStyle
	}
	switch {
	case percent > 10:
		return lipgloss.NewStyle().Foreground(Error)
	case percent < -10:
		return lipgloss.NewStyle().Foreground(Success)
	default:
		return lipgloss.NewStyle().Foreground(Warning)
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
