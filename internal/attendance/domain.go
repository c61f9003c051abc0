// Package attendance holds the monthly report domain: the daily-record
// pivot, the cached report service, and period bookkeeping.
package attendance

import (
	"fmt"
	"strings"

	"github.com/qayd-hr/qayd/internal/hrapi"
)

// MissingSentinel is rendered for any absent check-in or check-out value.
const MissingSentinel = "N/A"

// Cell is one employee's check-in and check-out for a single date.
type Cell struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// DailySummary maps date string to employee id to that day's cell. It is a
// pure projection of a report set, rebuilt on every render and never stored.
type DailySummary map[string]map[string]Cell

// Period identifies one reportable month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month" validate:"min=1,max=12"`
}

// Key returns the canonical period token, e.g. "2024-03".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Valid reports whether the period is a plausible report month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2020
}

// ColumnLabel returns the short header label for an employee column: the
// first token of the display name, or a positional fallback when the name
// is blank.
func ColumnLabel(r hrapi.MonthlyReport, position int) string {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Sprintf("Employee %d", position+1)
	}
	return strings.Fields(name)[0]
}
