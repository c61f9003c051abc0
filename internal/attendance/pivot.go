package attendance

import (
	"sort"

	"github.com/qayd-hr/qayd/internal/hrapi"
)

// BuildDailySummary pivots a set of per-employee monthly reports into a
// date-keyed table of cells.
//
// Writes go to [date][employeeId]; a second record for the same employee
// and date overwrites the first. Reports without daily records contribute
// nothing and do not affect other employees.
func BuildDailySummary(reports []hrapi.MonthlyReport) DailySummary {
	summary := make(DailySummary)
	for _, report := range reports {
		if report.EmployeeID == "" {
			continue
		}
		for _, rec := range report.DailyAttendance {
			if rec.Date == "" {
				continue
			}
			day, ok := summary[rec.Date]
			if !ok {
				day = make(map[string]Cell)
				summary[rec.Date] = day
			}
			day[report.EmployeeID] = Cell{
				CheckIn:  orMissing(rec.CheckIn),
				CheckOut: orMissing(rec.CheckOut),
			}
		}
	}
	return summary
}

// SortedDates returns the summary's date keys in ascending order. ISO
// dates sort chronologically as plain strings.
func (s DailySummary) SortedDates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Lookup returns the cell for a date and employee, with both fields set
// to the missing sentinel when no record exists.
func (s DailySummary) Lookup(date, employeeID string) Cell {
	if day, ok := s[date]; ok {
		if cell, ok := day[employeeID]; ok {
			return cell
		}
	}
	return Cell{CheckIn: MissingSentinel, CheckOut: MissingSentinel}
}

func orMissing(v string) string {
	if v == "" {
		return MissingSentinel
	}
	return v
}
