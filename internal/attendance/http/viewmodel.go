package attendancehttp

import (
	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/attendance/export"
	"github.com/qayd-hr/qayd/internal/hrapi"
)

// DashboardVM backs the admin monthly grid page.
type DashboardVM struct {
	Period    attendance.Period
	MonthName string
	Archive   []hrapi.ArchiveItem
	Grid      *export.Grid
}

// EmployeeVM backs the employee report page with the check-in portal.
type EmployeeVM struct {
	Period    attendance.Period
	MonthName string
	Archive   []hrapi.ArchiveItem
	View      *export.EmployeeReportView
	Status    *hrapi.TodayStatus
}

func newDashboardVM(p attendance.Period, archive []hrapi.ArchiveItem, reports []hrapi.MonthlyReport) *DashboardVM {
	return &DashboardVM{
		Period:    p,
		MonthName: attendance.ArabicMonthName(p.Month),
		Archive:   archive,
		Grid:      export.BuildGrid(reports, p),
	}
}

func newEmployeeVM(p attendance.Period, archive []hrapi.ArchiveItem, report *hrapi.MonthlyReport, status *hrapi.TodayStatus) *EmployeeVM {
	if status == nil {
		status = &hrapi.TodayStatus{}
	}
	return &EmployeeVM{
		Period:    p,
		MonthName: attendance.ArabicMonthName(p.Month),
		Archive:   archive,
		View:      export.BuildEmployeeReport(report, p),
		Status:    status,
	}
}
