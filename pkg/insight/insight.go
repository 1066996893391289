// Package insight derives the headline figures shown for a price history: latest
// price, trailing changes over three horizons, and a 24h swing alert.
package insight

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"findash-api/pkg/market"
)

// Placeholder is displayed for any figure that cannot be computed.
const Placeholder = "N/A"

// Trailing offsets, in points, from the latest observation.
const (
	offset24h = 1
	offset7d  = 7
	offset30d = 30
)

var hundred = decimal.NewFromInt(100)

// Report is the display-ready summary of a series. Every field is already formatted.
type Report struct {
	LatestPrice string `json:"latestPrice"`
	Change24h   string `json:"change24h"`
	Change7d    string `json:"change7d"`
	Change30d   string `json:"change30d"`
	Alert       string `json:"alert,omitempty"`
}

// HasAlert reports whether the 24h change crossed the threshold.
func (r Report) HasAlert() bool { return r.Alert != "" }

// Available reports whether the report carries figures rather than placeholders.
func (r Report) Available() bool { return r.LatestPrice != Placeholder }

// Unavailable is the report for a series too short to compare.
func Unavailable() Report {
	return Report{
		LatestPrice: Placeholder,
		Change24h:   Placeholder,
		Change7d:    Placeholder,
		Change30d:   Placeholder,
	}
}

// ValidThreshold reports whether t is usable as an alert threshold.
func ValidThreshold(t float64) bool {
	return t > 0 && !math.IsInf(t, 0) && !math.IsNaN(t)
}

// Calculate builds the report for series. It never fails: a series with fewer than
// two points yields Unavailable().
//
// The 7d and 30d references fall back to the first point when the series is too
// short to reach that far back, so a short history reports its whole-span change
// under those labels.
func Calculate(series market.Series, threshold float64) Report {
	n := series.Len()
	if n < 2 {
		return Unavailable()
	}

	latest := series.At(n - 1).Price
	change24h, ok24h := percentChange(latest, series.At(n-1-offset24h).Price)
	change7d, ok7d := percentChange(latest, referencePrice(series, offset7d))
	change30d, ok30d := percentChange(latest, referencePrice(series, offset30d))

	report := Report{
		LatestPrice: FormatPrice(latest),
		Change24h:   formatIf(change24h, ok24h),
		Change7d:    formatIf(change7d, ok7d),
		Change30d:   formatIf(change30d, ok30d),
	}
	if ok24h && ValidThreshold(threshold) && change24h.Abs().GreaterThan(decimal.NewFromFloat(threshold)) {
		report.Alert = alertMessage(change24h)
	}
	return report
}

func referencePrice(series market.Series, offset int) decimal.Decimal {
	n := series.Len()
	if n > offset {
		return series.At(n - 1 - offset).Price
	}
	return series.At(0).Price
}

// percentChange returns (latest-ref)/ref*100. ok is false when ref is zero.
func percentChange(latest, ref decimal.Decimal) (decimal.Decimal, bool) {
	if ref.IsZero() {
		return decimal.Zero, false
	}
	return latest.Sub(ref).Div(ref).Mul(hundred), true
}

func formatIf(change decimal.Decimal, ok bool) string {
	if !ok {
		return Placeholder
	}
	return FormatChange(change)
}

func alertMessage(change24h decimal.Decimal) string {
	direction := "Decrease"
	if change24h.IsPositive() {
		direction = "Increase"
	}
	return "Alert: " + direction + " of " + FormatChange(change24h) + " in the last 24 hours!"
}

// FormatPrice renders a price as US dollars with a thousands separator, e.g. "$1,234.56".
func FormatPrice(price decimal.Decimal) string {
	f, _ := price.Round(2).Float64()
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// FormatChange renders a percentage with an explicit sign and two decimals,
// e.g. "+6.00%" or "-20.00%". Values that round to zero print as "0.00%".
func FormatChange(change decimal.Decimal) string {
	rounded := change.Round(2)
	s := rounded.StringFixed(2) + "%"
	if rounded.IsPositive() {
		return "+" + s
	}
	return s
}
