package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/hrapi"
)

func period(year, month int) attendance.Period {
	return attendance.Period{Year: year, Month: month}
}

func sampleReports() []hrapi.MonthlyReport {
	return []hrapi.MonthlyReport{
		{
			EmployeeID:     "e1",
			Name:           "Ahmed Ali",
			Department:     "Engineering",
			TotalWorkHours: 160.5,
			RequiredHours:  168,
			ShortfallHours: 7.5,
			AbsenceDays:    1,
			DailyAttendance: []hrapi.DailyRecord{
				{Date: "2024-03-05", CheckIn: "08:01", CheckOut: "16:05", WorkDuration: 484, Status: "Full Day"},
			},
		},
		{
			EmployeeID:     "e2",
			Name:           "Sara Mahmoud",
			Department:     "HR",
			TotalWorkHours: 168,
			RequiredHours:  168,
			DailyAttendance: []hrapi.DailyRecord{
				{Date: "2024-03-06", CheckIn: "09:00", CheckOut: "17:00", WorkDuration: 480, Status: "Early Out"},
			},
		},
	}
}

func TestBuildGrid(t *testing.T) {
	grid := BuildGrid(sampleReports(), period(2024, 3))
	require.False(t, grid.Empty)
	require.Equal(t, "مارس", grid.MonthName)
	require.Len(t, grid.Columns, 2)
	require.Equal(t, "Ahmed", grid.Columns[0].Label)
	require.Equal(t, "Sara", grid.Columns[1].Label)
	require.Len(t, grid.Rows, 2)

	// e2 has no record on 2024-03-05, so the sentinel fills both cells.
	first := grid.Rows[0]
	require.Equal(t, "2024-03-05", first.Date)
	require.Equal(t, attendance.Cell{CheckIn: "08:01", CheckOut: "16:05"}, first.Cells[0])
	require.Equal(t, attendance.Cell{CheckIn: "N/A", CheckOut: "N/A"}, first.Cells[1])

	require.Len(t, grid.Footers, 6)
	require.Equal(t, []string{"160.50", "168.00"}, grid.Footers[0].Values)
	require.Equal(t, []string{"7.50", "0.00"}, grid.Footers[3].Values)
	require.Equal(t, []string{"1", "0"}, grid.Footers[4].Values)
}

func TestBuildGridEmpty(t *testing.T) {
	grid := BuildGrid(nil, period(2024, 3))
	require.True(t, grid.Empty)
	require.Equal(t, attendance.MsgNoReports, grid.EmptyMsg)

	// Reports exist but carry no daily records.
	grid = BuildGrid([]hrapi.MonthlyReport{{EmployeeID: "e1", Name: "Ahmed"}}, period(2024, 3))
	require.True(t, grid.Empty)
	require.Equal(t, attendance.MsgNoRecords, grid.EmptyMsg)
}

func TestRenderGrid(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	html, err := renderer.RenderGrid(BuildGrid(sampleReports(), period(2024, 3)))
	require.NoError(t, err)
	for _, want := range []string{"مارس", "2024-03-05", "08:01", "N/A", "Ahmed", "إجمالي ساعات العمل"} {
		require.Contains(t, html, want)
	}
}

func TestRenderGridEmptyState(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	html, err := renderer.RenderGrid(BuildGrid(nil, period(2024, 3)))
	require.NoError(t, err)
	require.Contains(t, html, attendance.MsgNoReports)
	require.NotContains(t, html, "<table")
}

func TestRenderEmployeeReport(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	report := sampleReports()[0]
	view := BuildEmployeeReport(&report, period(2024, 3))
	require.False(t, view.Empty)

	html, err := renderer.RenderEmployeeReport(view)
	require.NoError(t, err)
	for _, want := range []string{"Ahmed Ali", "Engineering", "160.50", "2024-03-05"} {
		require.Contains(t, html, want)
	}
	require.Contains(t, html, "8.07")
	require.NotContains(t, html, ">484<")
	require.Contains(t, html, "badge-full")
	require.Contains(t, html, "وقت العمل (بالساعات)")
}

func TestBuildEmployeeReportEmpty(t *testing.T) {
	view := BuildEmployeeReport(nil, period(2024, 3))
	require.True(t, view.Empty)
	require.Equal(t, attendance.MsgNoRecords, view.EmptyMsg)

	view = BuildEmployeeReport(&hrapi.MonthlyReport{Name: "Ahmed"}, period(2024, 3))
	require.True(t, view.Empty)
	require.Equal(t, "Ahmed", view.Report.Name)
}

func TestWriteGridCSV(t *testing.T) {
	grid := BuildGrid(sampleReports(), period(2024, 3))
	buf := &strings.Builder{}
	require.NoError(t, WriteGridCSV(buf, grid))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header, two date rows, six footer rows.
	require.Len(t, lines, 9)
	require.Equal(t, "Date,Ahmed In,Ahmed Out,Sara In,Sara Out", lines[0])
	require.Contains(t, lines[1], "2024-03-05,08:01,16:05,N/A,N/A")
}
