// Package utils provides small display helpers shared by the chart and
// terminal renderers.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCompact formats a number in short-scale notation.
// e.g., 1500 → "1.5K", 2950000000000 → "2.95T", -84700000 → "-84.7M"
func FormatCompact(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	switch {
	case v >= 1e12:
		return sign + formatWithDecimals(v/1e12) + "T"
	case v >= 1e9:
		return sign + formatWithDecimals(v/1e9) + "B"
	case v >= 1e6:
		return sign + formatWithDecimals(v/1e6) + "M"
	case v >= 1e3:
		return sign + formatWithDecimals(v/1e3) + "K"
	default:
		return sign + formatWithDecimals(v)
	}
}

// FormatVolume formats a share volume in compact notation.
// e.g., 500 → "500", 1500000 → "1.5M"
func FormatVolume(volume int64) string {
	if volume < 1000 {
		return fmt.Sprintf("%d", volume)
	}
	return FormatCompact(float64(volume))
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
