// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/calciq/internal/config"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return FormatGrouped(n, config.GroupThousands)
}

// FormatGrouped adds separators to n using the given digit grouping.
// e.g., 1234567 -> "1,234,567" (thousands) or "12,34,567" (lakh)
func FormatGrouped(n int64, g config.Grouping) string {
	if n < 0 {
		return "-" + FormatGrouped(-n, g)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	step := 3
	if g == config.GroupLakh {
		step = 2
	}

	var parts []string
	for len(head) > step {
		parts = append([]string{head[len(head)-step:]}, parts...)
		head = head[:len(head)-step]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}

// FormatMoney formats an amount in whole currency units.
// e.g., 12800 -> "₹12,800", -5000 -> "-₹5,000"
func FormatMoney(amount float64, cur config.Currency) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return cur.Symbol + "?"
	}
	n := int64(math.Round(amount))
	if n < 0 {
		return "-" + cur.Symbol + FormatGrouped(-n, cur.Grouping)
	}
	return cur.Symbol + FormatGrouped(n, cur.Grouping)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatClock formats seconds as m:ss.
// e.g., 125 -> "2:05", 0 -> "0:00"
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// FormatAge formats seconds into a coarse elapsed time.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatAge(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
