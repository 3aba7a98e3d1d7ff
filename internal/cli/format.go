// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatPrice formats a home value in whole dollars.
// e.g., 312450.7 -> "$312,451"
func FormatPrice(v float64) string {
	if v < 0 {
		return "-" + FormatPrice(-v)
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

// FormatCompactPrice formats a home value with K/M suffixes.
// e.g., 312450 -> "$312.5K", 1250000 -> "$1.25M"
func FormatCompactPrice(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%s$%.2fM", sign, abs/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, abs/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, abs)
	}
}

// FormatSignedPrice formats a change in value with an explicit sign.
func FormatSignedPrice(delta float64) string {
	if delta >= 0 {
		return "+" + FormatPrice(delta)
	}
	return "-" + FormatPrice(-delta)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a signed percentage, or "n/a" when undefined.
func FormatPercent(pct *float64) string {
	if pct == nil || math.IsNaN(*pct) || math.IsInf(*pct, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *pct)
}

// FormatMonth formats a period as "Jan 2024".
func FormatMonth(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2006")
}

// FormatAxisDate formats a chart tick as "1/2024".
func FormatAxisDate(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// FormatPeriod formats a forecast window.
// e.g., "Jul 2024 to Jun 2025 (12 months)"
func FormatPeriod(start, end time.Time, count int) string {
	unit := "months"
	if count == 1 {
		unit = "month"
	}
	return fmt.Sprintf("%s to %s (%d %s)", FormatMonth(start), FormatMonth(end), count, unit)
}

// FormatAgo formats a timestamp relative to now.
// e.g., "3 minutes ago"
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
