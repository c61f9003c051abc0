package attendance

import (
	"fmt"
	"math"
)

// arabicMonths maps 1-based month numbers to their Arabic names as they
// appear in report titles and export filenames.
var arabicMonths = map[int]string{
	1:  "يناير",
	2:  "فبراير",
	3:  "مارس",
	4:  "أبريل",
	5:  "مايو",
	6:  "يونيو",
	7:  "يوليو",
	8:  "أغسطس",
	9:  "سبتمبر",
	10: "أكتوبر",
	11: "نوفمبر",
	12: "ديسمبر",
}

// ArabicMonthName returns the Arabic name for a 1-based month number, or
// the bare number when out of range.
func ArabicMonthName(month int) string {
	if name, ok := arabicMonths[month]; ok {
		return name
	}
	return fmt.Sprintf("%d", month)
}

// FormatHours renders an hour aggregate with exactly two decimals. Any
// value that is not a usable number renders as "0.00"; this is a display
// rule, not a correction of the underlying data.
func FormatHours(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatMinutes renders a per-day work duration, stored upstream in
// minutes, as hours with two decimals.
func FormatMinutes(minutes int) string {
	return FormatHours(float64(minutes) / 60)
}

// StatusBadgeClass maps a daily attendance status to the CSS class of
// its badge. Unknown statuses get the neutral badge.
func StatusBadgeClass(status string) string {
	switch status {
	case "Full Day":
		return "badge-full"
	case "Early Out":
		return "badge-early"
	default:
		return "badge-none"
	}
}
