package util

import (
	"fmt"
	"time"
)

// FormatDate formats a timestamp the way the profile shows repo updates,
// e.g. "Mar 1, 2024".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("Jan 2, 2006")
}

// FormatCount shortens large counts: 950, 1.2k, 12k, 3.4M.
func FormatCount(n int) string {
	switch {
	case n < 0:
		return "0"
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 10_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000)) + "k"
	case n < 1_000_000:
		return fmt.Sprintf("%dk", n/1000)
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	}
}

func trimZero(s string) string {
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
