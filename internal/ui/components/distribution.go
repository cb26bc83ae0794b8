package components

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/aws-costs-tui/internal/ui/styles"
)

// DistributionBar renders a service's cost relative to the most expensive
// service of the same period.
type DistributionBar struct {
	progress progress.Model
}

// NewDistributionBar creates a bar of the given width.
func NewDistributionBar(width int) DistributionBar {
	p := progress.New(
		progress.WithSolidFill(string(styles.Primary)),
		progress.WithWidth(max(width, 1)),
		progress.WithoutPercentage(),
	)
	p.Full = '█'
	p.Empty = '░'
	p.EmptyColor = string(styles.Subtle)

	return DistributionBar{progress: p}
}

// SetWidth sets the bar width.
func (d *DistributionBar) SetWidth(width int) {
	d.progress.Width = max(width, 1)
}

// Width returns the bar width.
func (d DistributionBar) Width() int {
	return d.progress.Width
}

// View renders fraction, clamped to [0, 1], filled with color.
func (d DistributionBar) View(fraction float64, color lipgloss.Color) string {
	fraction = min(max(fraction, 0), 1)
	d.progress.FullColor = string(color)
	return d.progress.ViewAs(fraction)
}
