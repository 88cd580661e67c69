// Package utils provides shared formatting helpers for the terminal.
package utils

import (
	"fmt"
	"math"
)

// FormatUSD formats a dollar amount in compact notation.
// e.g., 1927345000 → "$1.93B", -4500 → "-$4.50K"
func FormatUSD(amount float64) string {
	prefix := "$"
	if amount < 0 {
		prefix = "-$"
	}
	v := math.Abs(amount)

	switch {
	case v >= 1e12:
		return fmt.Sprintf("%s%.2fT", prefix, v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, v/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, v)
	}
}

// FormatPrice formats a per-unit price with precision adapted to its
// magnitude, so sub-cent assets keep significant digits.
// e.g., 50123.4 → "$50,123", 0.0000234 → "$0.0000234"
func FormatPrice(price float64) string {
	v := math.Abs(price)
	sign := ""
	if price < 0 {
		sign = "-"
	}
	switch {
	case v >= 1000:
		return fmt.Sprintf("%s$%s", sign, groupThousands(int64(v+0.5)))
	case v >= 1:
		return fmt.Sprintf("%s$%.2f", sign, v)
	case v >= 0.01:
		return fmt.Sprintf("%s$%.4f", sign, v)
	case v == 0:
		return "$0.00"
	default:
		return fmt.Sprintf("%s$%.7g", sign, v)
	}
}

// FormatPct formats a percentage with an explicit sign.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands renders n with comma separators.
func groupThousands(n int64) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return groupThousands(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
