// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/aws-costs-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// asciigraph needs two points to draw a line
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Orange),
	)
}

// BarSeries is one stacked segment repeated across every bar of a chart.
type BarSeries struct {
	Name   string
	Color  lipgloss.Color
	Values []float64
}

// RenderStackedBars draws one bar per label, each stacked from the series in
// order. Missing values count as zero.
func RenderStackedBars(labels []string, series []BarSeries, width, height int) string {
	if len(labels) == 0 || len(series) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}

	bc := barchart.New(width, height)
	for i, label := range labels {
		values := make([]barchart.BarValue, 0, len(series))
		for _, s := range series {
			v := 0.0
			if i < len(s.Values) {
				v = s.Values[i]
			}
			values = append(values, barchart.BarValue{
				Name:  s.Name,
				Value: v,
				Style: lipgloss.NewStyle().Foreground(s.Color),
			})
		}
		bc.Push(barchart.BarData{Label: label, Values: values})
	}

	bc.Draw()
	return bc.View()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// RenderLegendWrapped lays the legend out over as many lines as width needs.
func RenderLegendWrapped(items []LegendItem, width int) string {
	var lines []string
	var line []LegendItem
	for _, item := range items {
		candidate := append(line, item)
		if len(line) > 0 && lipgloss.Width(RenderLegend(candidate)) > width {
			lines = append(lines, RenderLegend(line))
			line = []LegendItem{item}
			continue
		}
		line = candidate
	}
	if len(line) > 0 {
		lines = append(lines, RenderLegend(line))
	}
	return strings.Join(lines, "\n")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
