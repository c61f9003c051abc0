package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/qayd-hr/qayd/internal/attendance"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// GridFileName names the all-employees PDF for a period, e.g.
// "تقرير الحضور_مارس_2024.pdf".
func GridFileName(p attendance.Period) string {
	return fmt.Sprintf("تقرير الحضور_%s_%d.pdf", attendance.ArabicMonthName(p.Month), p.Year)
}

// EmployeeFileName names a per-employee PDF. Whitespace runs in the name
// collapse to single underscores so the filename stays portable.
func EmployeeFileName(name string, p attendance.Period) string {
	normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	if normalized == "" {
		normalized = "Employee"
	}
	return fmt.Sprintf("%s_Monthly_Report_%s_%d.pdf", normalized, attendance.ArabicMonthName(p.Month), p.Year)
}

// CSVFileName names the CSV export for a period.
func CSVFileName(p attendance.Period) string {
	return fmt.Sprintf("attendance_%s.csv", p.Key())
}
