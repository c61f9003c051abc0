package attendance

import "errors"

var (
	// ErrInvalidPeriod indicates a year/month outside the reportable range.
	ErrInvalidPeriod = errors.New("attendance: invalid period")
	// ErrNoReports indicates the selected month has no reports at all.
	ErrNoReports = errors.New("attendance: no reports for period")
)

// Arabic user-facing messages, kept verbatim from the HR console copy.
const (
	MsgNoReports      = "لا توجد تقارير متاحة لهذا الشهر."
	MsgNoRecords      = "لا توجد سجلات حضور لهذا الشهر."
	MsgExportFailed   = "فشل إنشاء ملف PDF. الرجاء المحاولة مرة أخرى."
	MsgUpstreamFailed = "تعذر تحميل التقارير. الرجاء المحاولة لاحقاً."
)
