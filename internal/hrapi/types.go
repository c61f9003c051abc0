package hrapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Hours is a duration-in-hours value as reported by the HR API.
//
// The upstream service is inconsistent about numeric encoding: the same
// field arrives as a JSON number, a numeric string, or null depending on
// which backend job produced the report. Hours absorbs all three and maps
// anything unparseable to zero so a single malformed field never sinks a
// whole report.
type Hours float64

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hours) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*h = 0
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*h = 0
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*h = 0
			return nil
		}
		*h = Hours(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		*h = 0
		return nil
	}
	*h = Hours(v)
	return nil
}

// Float64 returns the plain numeric value.
func (h Hours) Float64() float64 { return float64(h) }

// Department carries the employee department name. The HR API returns it
// either as a bare string or as an object with a dep_name field.
type Department string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Department) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = ""
		return nil
	}
	if trimmed[0] == '{' {
		var obj struct {
			DepName string `json:"dep_name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		*d = Department(obj.DepName)
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*d = Department(s)
	return nil
}

// DailyRecord is a single attendance day inside a monthly report.
type DailyRecord struct {
	Date         string `json:"date"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	WorkDuration int    `json:"workDuration"`
	Status       string `json:"status"`
}

// MonthlyReport is one employee's attendance summary for a month.
type MonthlyReport struct {
	EmployeeID       string        `json:"employeeId" validate:"required"`
	Name             string        `json:"name"`
	EmployeeIDNumber string        `json:"employeeID_Number"`
	Department       Department    `json:"department"`
	MonthName        string        `json:"monthName"`
	PresentDays      int           `json:"presentDays"`
	AbsenceDays      int           `json:"absenceDays"`
	TotalLeaveDays   int           `json:"totalLeaveDays"`
	TotalWorkHours   Hours         `json:"totalWorkDurationHours"`
	RequiredHours    Hours         `json:"requiredHours"`
	OvertimeHours    Hours         `json:"overtimeHours"`
	ShortfallHours   Hours         `json:"shortfallHours"`
	DailyAttendance  []DailyRecord `json:"dailyAttendance"`
}

// ArchiveItem is one entry in the monthly report archive listing.
type ArchiveItem struct {
	Month int `json:"month" validate:"min=1,max=12"`
	Year  int `json:"year" validate:"min=2020"`
}

// TodayStatus reports whether the calling employee has an open check-in.
type TodayStatus struct {
	IsCheckedIn bool `json:"isCheckedIn"`
}
