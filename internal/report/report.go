// Package report renders a cost snapshot as plain text for non-interactive use.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/services/costexplorer"
)

// Render writes the snapshot as plain text. The output depends only on the
// snapshot, so identical snapshots render byte-identically.
func Render(w io.Writer, snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("render report: nil snapshot")
	}

	var b strings.Builder
	b.WriteString("AWS Costs\n")
	b.WriteString(strings.Repeat("=", len("AWS Costs")) + "\n")

	writeSummary(&b, "Current month (month to date)", snap.Current)
	writeSummary(&b, "Previous month", snap.Previous)
	writeTrend(&b, snap.Trend)

	if len(snap.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warning := range snap.Warnings {
			b.WriteString("  - " + warning + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError writes a one-line classified error and, when known, a hint.
func RenderError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := costexplorer.Hint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

func writeSummary(b *strings.Builder, title string, summary *models.PeriodSummary) {
	b.WriteString("\n" + title + "\n")
	if summary == nil {
		b.WriteString("  no data\n")
		return
	}

	fmt.Fprintf(b, "  Period: %s (%s)\n", summary.Period.Label(), summary.Period)
	fmt.Fprintf(b, "  Total:  %s %s\n", summary.Total.StringFixed(2), summary.Currency)

	if summary.Len() == 0 {
		b.WriteString("  no spend recorded\n")
		return
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"#", "Service", "Cost", "Share"})
	for _, svc := range summary.Services {
		tw.AppendRow(table.Row{
			svc.Rank,
			svc.Name,
			svc.Amount.StringFixed(2),
			fmt.Sprintf("%.1f%%", svc.PercentOfTotal),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	b.WriteString(tw.Render() + "\n")
}

func writeTrend(b *strings.Builder, matrix *models.TrendMatrix) {
	b.WriteString("\nTrend\n")
	if matrix == nil || matrix.Len() == 0 {
		b.WriteString("  no data\n")
		return
	}

	header := table.Row{"Service"}
	for _, month := range matrix.Months {
		header = append(header, month.Start.Format("Jan 2006"))
	}

	tw := newTable()
	tw.AppendHeader(header)
	for _, svc := range matrix.TopServices {
		row := table.Row{svc}
		for i := range matrix.Months {
			row = append(row, matrix.Cell(svc, i).StringFixed(2))
		}
		tw.AppendRow(row)
	}

	totals := table.Row{"Total (" + matrix.Currency + ")"}
	deltas := table.Row{"Change"}
	for _, mt := range matrix.MonthlyTotals {
		totals = append(totals, mt.Total.StringFixed(2))
		deltas = append(deltas, mt.Delta.String())
	}
	tw.AppendSeparator()
	tw.AppendRow(totals)
	tw.AppendRow(deltas)

	configs := make([]table.ColumnConfig, 0, len(matrix.Months))
	for i := range matrix.Months {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 2,
			Align:       text.AlignRight,
			AlignHeader: text.AlignRight,
		})
	}
	tw.SetColumnConfigs(configs)
	b.WriteString(tw.Render() + "\n")
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Color = table.ColorOptions{}
	tw.Style().Format.Header = text.FormatDefault
	return tw
}
