package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatPercent formats a percentage with one decimal place, e.g. "66.7%"
func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatRow leaves row numbers that are unknown (zero) blank
func formatRow(row int) string {
	if row <= 0 {
		return ""
	}
	return strconv.Itoa(row)
}

// formatYesNo formats a boolean the way the roster reports print it
func formatYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatFingerprint prints a snapshot fingerprint as 16 hex digits
func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
