package components

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// Ellipsis marks a truncated name.
const Ellipsis = "…"

var servicePrefixes = []string{"Amazon ", "AWS "}

// ShortenServiceName drops the vendor prefix from a Cost Explorer service
// name and truncates the rest to width cells. A width below 1 disables
// truncation.
func ShortenServiceName(name string, width int) string {
	for _, prefix := range servicePrefixes {
		if trimmed, ok := strings.CutPrefix(name, prefix); ok && trimmed != "" {
			name = trimmed
			break
		}
	}
	return Truncate(name, width)
}

// Truncate shortens s to at most width cells, ending in an ellipsis when
// anything was cut.
func Truncate(s string, width int) string {
	if width < 1 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// FormatAmount renders an amount with two decimals, grouped thousands and
// its currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	s := humanize.FormatFloat("#,###.##", amount.Round(2).InexactFloat64())
	if currency == "" || currency == "USD" {
		if rest, ok := strings.CutPrefix(s, "-"); ok {
			return "-$" + rest
		}
		return "$" + s
	}
	return s + " " + currency
}
