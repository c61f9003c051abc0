// Package export renders monthly attendance grids and turns them into
// downloadable artefacts.
package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/hrapi"
	"github.com/qayd-hr/qayd/web"
)

// GridColumn is one employee's paired check-in/check-out column group.
type GridColumn struct {
	EmployeeID string
	Label      string
	FullName   string
}

// GridRow is one date row across every employee column.
type GridRow struct {
	Date  string
	Cells []attendance.Cell
}

// FooterRow is one aggregate metric row, one value per employee spanning
// both sub-columns.
type FooterRow struct {
	Label  string
	Values []string
}

// Grid is the wide-format monthly table handed to the renderer.
type Grid struct {
	Period    attendance.Period
	MonthName string
	Columns   []GridColumn
	Rows      []GridRow
	Footers   []FooterRow
	Empty     bool
	EmptyMsg  string
}

// BuildGrid pivots the report set and derives the rows and footers of the
// wide table. An empty report set yields an empty-state grid rather than
// an error.
func BuildGrid(reports []hrapi.MonthlyReport, p attendance.Period) *Grid {
	grid := &Grid{
		Period:    p,
		MonthName: attendance.ArabicMonthName(p.Month),
	}
	if len(reports) == 0 {
		grid.Empty = true
		grid.EmptyMsg = attendance.MsgNoReports
		return grid
	}

	columns := make([]GridColumn, 0, len(reports))
	for i, r := range reports {
		columns = append(columns, GridColumn{
			EmployeeID: r.EmployeeID,
			Label:      attendance.ColumnLabel(r, i),
			FullName:   r.Name,
		})
	}
	grid.Columns = columns

	summary := attendance.BuildDailySummary(reports)
	dates := summary.SortedDates()
	if len(dates) == 0 {
		grid.Empty = true
		grid.EmptyMsg = attendance.MsgNoRecords
		return grid
	}

	rows := make([]GridRow, 0, len(dates))
	for _, date := range dates {
		row := GridRow{Date: date, Cells: make([]attendance.Cell, 0, len(columns))}
		for _, col := range columns {
			row.Cells = append(row.Cells, summary.Lookup(date, col.EmployeeID))
		}
		rows = append(rows, row)
	}
	grid.Rows = rows
	grid.Footers = buildFooters(reports)
	return grid
}

// Footer labels, kept verbatim from the HR console copy.
const (
	footerActual    = "إجمالي ساعات العمل"
	footerRequired  = "الساعات المطلوبة"
	footerOvertime  = "الساعات الإضافية"
	footerShortfall = "ساعات النقص"
	footerAbsence   = "أيام الغياب"
	footerLeave     = "أيام الإجازات"
)

func buildFooters(reports []hrapi.MonthlyReport) []FooterRow {
	hours := func(pick func(hrapi.MonthlyReport) hrapi.Hours) []string {
		values := make([]string, 0, len(reports))
		for _, r := range reports {
			values = append(values, attendance.FormatHours(pick(r).Float64()))
		}
		return values
	}
	days := func(pick func(hrapi.MonthlyReport) int) []string {
		values := make([]string, 0, len(reports))
		for _, r := range reports {
			values = append(values, fmt.Sprintf("%d", pick(r)))
		}
		return values
	}
	return []FooterRow{
		{Label: footerActual, Values: hours(func(r hrapi.MonthlyReport) hrapi.Hours { return r.TotalWorkHours })},
		{Label: footerRequired, Values: hours(func(r hrapi.MonthlyReport) hrapi.Hours { return r.RequiredHours })},
		{Label: footerOvertime, Values: hours(func(r hrapi.MonthlyReport) hrapi.Hours { return r.OvertimeHours })},
		{Label: footerShortfall, Values: hours(func(r hrapi.MonthlyReport) hrapi.Hours { return r.ShortfallHours })},
		{Label: footerAbsence, Values: days(func(r hrapi.MonthlyReport) int { return r.AbsenceDays })},
		{Label: footerLeave, Values: days(func(r hrapi.MonthlyReport) int { return r.TotalLeaveDays })},
	}
}

// EmployeeReportView is the per-employee export payload: the summary card
// plus the daily log.
type EmployeeReportView struct {
	Report    hrapi.MonthlyReport
	Period    attendance.Period
	MonthName string
	Empty     bool
	EmptyMsg  string
}

// BuildEmployeeReport prepares the per-employee view.
func BuildEmployeeReport(report *hrapi.MonthlyReport, p attendance.Period) *EmployeeReportView {
	view := &EmployeeReportView{
		Period:    p,
		MonthName: attendance.ArabicMonthName(p.Month),
	}
	if report == nil || len(report.DailyAttendance) == 0 {
		view.Empty = true
		view.EmptyMsg = attendance.MsgNoRecords
		if report != nil {
			view.Report = *report
		}
		return view
	}
	view.Report = *report
	return view
}

// HTMLRenderer executes the report templates against grid and employee
// views. Templates are parsed once at construction.
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer parses the report templates from the embedded FS.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcMap := template.FuncMap{
		"formatHours":    attendance.FormatHours,
		"minutesToHours": attendance.FormatMinutes,
		"statusClass":    attendance.StatusBadgeClass,
		"hours": func(h hrapi.Hours) string {
			return attendance.FormatHours(h.Float64())
		},
	}
	tpl, err := template.New("reports").Funcs(funcMap).ParseFS(
		web.Templates, "templates/reports/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &HTMLRenderer{templates: tpl}, nil
}

// RenderGrid produces the standalone HTML document for the wide table.
func (r *HTMLRenderer) RenderGrid(grid *Grid) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("renderer not initialised")
	}
	buf := &bytes.Buffer{}
	if err := r.templates.ExecuteTemplate(buf, "attendance_grid.html", grid); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderEmployeeReport produces the standalone HTML document for one
// employee's monthly report.
func (r *HTMLRenderer) RenderEmployeeReport(view *EmployeeReportView) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("renderer not initialised")
	}
	buf := &bytes.Buffer{}
	if err := r.templates.ExecuteTemplate(buf, "employee_report.html", view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
