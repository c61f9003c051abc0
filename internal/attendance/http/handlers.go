// Package attendancehttp serves the monthly attendance pages and exports.
package attendancehttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/attendance/export"
	"github.com/qayd-hr/qayd/internal/hrapi"
	"github.com/qayd-hr/qayd/internal/observability"
	"github.com/qayd-hr/qayd/internal/platform/httpx"
	"github.com/qayd-hr/qayd/internal/view"
	"github.com/qayd-hr/qayd/jobs"
)

const requestTimeout = 15 * time.Second

// ReportService is the attendance domain contract used by the handler.
type ReportService interface {
	AllReports(ctx context.Context, p attendance.Period) ([]hrapi.MonthlyReport, error)
	MyReport(ctx context.Context, p attendance.Period) (*hrapi.MonthlyReport, error)
	Archive(ctx context.Context, role hrapi.Role) ([]hrapi.ArchiveItem, error)
	CheckIn(ctx context.Context) (*hrapi.ActionResult, error)
	CheckOut(ctx context.Context) (*hrapi.ActionResult, error)
	TodayStatus(ctx context.Context) (*hrapi.TodayStatus, error)
}

// GridRenderer renders report documents to standalone HTML.
type GridRenderer interface {
	RenderGrid(grid *export.Grid) (string, error)
	RenderEmployeeReport(view *export.EmployeeReportView) (string, error)
}

// PDFService paginates rendered HTML into a PDF artefact.
type PDFService interface {
	Export(ctx context.Context, key, html string) ([]byte, error)
}

// SnapshotScheduler enqueues background grid snapshot renders.
type SnapshotScheduler interface {
	EnqueueGridSnapshot(ctx context.Context, payload jobs.SnapshotPayload) (*asynq.TaskInfo, error)
}

// Handler coordinates HTTP requests for attendance reports.
type Handler struct {
	logger    *slog.Logger
	service   ReportService
	renderer  GridRenderer
	pdf       PDFService
	templates *view.Engine
	metrics   *observability.Metrics
	snapshots SnapshotScheduler
	now       func() time.Time
}

// NewHandler constructs the attendance HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService, renderer GridRenderer, pdf PDFService, templates *view.Engine, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		renderer:  renderer,
		pdf:       pdf,
		templates: templates,
		metrics:   metrics,
		now:       time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithSnapshots enables the on-demand archive snapshot trigger. Without a
// scheduler the route answers 503.
func (h *Handler) WithSnapshots(s SnapshotScheduler) {
	h.snapshots = s
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	archive, err := h.service.Archive(ctx, hrapi.RoleAdmin)
	if err != nil {
		h.handleServerError(w, "load archive", err)
		return
	}
	reports, err := h.service.AllReports(ctx, p)
	if err != nil {
		h.handleServerError(w, "load reports", err)
		return
	}

	data := view.TemplateData{
		Title:       "سجل الحضور",
		CurrentPath: "/attendance",
		Data:        newDashboardVM(p, archive, reports),
	}
	if err := h.templates.Render(w, "pages/attendance.html", data); err != nil {
		h.handleServerError(w, "render dashboard", err)
	}
}

func (h *Handler) handleGridPDF(w http.ResponseWriter, r *http.Request) {
	p, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reports, err := h.service.AllReports(ctx, p)
	if err != nil {
		h.handleServerError(w, "load reports", err)
		return
	}
	grid := export.BuildGrid(reports, p)
	if grid.Empty {
		httpx.Problem(w, http.StatusNotFound, "No Reports", grid.EmptyMsg)
		return
	}

	html, err := h.renderer.RenderGrid(grid)
	if err != nil {
		h.handleServerError(w, "render grid html", err)
		return
	}
	data, err := h.pdf.Export(ctx, "grid:"+p.Key(), html)
	h.metrics.CountExport("grid_pdf", err)
	if err != nil {
		h.logger.Error("export grid pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", attendance.MsgExportFailed)
		return
	}

	streamAttachment(w, export.GridFileName(p), "application/pdf", data)
}

func (h *Handler) handleGridCSV(w http.ResponseWriter, r *http.Request) {
	p, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reports, err := h.service.AllReports(ctx, p)
	if err != nil {
		h.handleServerError(w, "load reports", err)
		return
	}
	grid := export.BuildGrid(reports, p)
	if grid.Empty {
		httpx.Problem(w, http.StatusNotFound, "No Reports", grid.EmptyMsg)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.CSVFileName(p)))
	if err := export.WriteGridCSV(w, grid); err != nil {
		h.logger.Error("stream csv", slog.Any("error", err))
	}
	h.metrics.CountExport("grid_csv", nil)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Jobs Unavailable", "background jobs are not configured")
		return
	}
	p, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	info, err := h.snapshots.EnqueueGridSnapshot(r.Context(), jobs.SnapshotPayload{Year: p.Year, Month: p.Month})
	if err != nil {
		h.logger.Error("enqueue snapshot", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Jobs Unavailable", "could not enqueue the snapshot job")
		return
	}
	h.logger.Info("snapshot enqueued", slog.String("task", info.ID), slog.String("period", p.Key()))

	if wantsHTML(r) {
		http.Redirect(w, r, "/attendance?year="+strconv.Itoa(p.Year)+"&month="+strconv.Itoa(p.Month), http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task": info.ID, "period": p.Key()})
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	p, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	archive, err := h.service.Archive(ctx, hrapi.RoleEmployee)
	if err != nil {
		h.handleServerError(w, "load archive", err)
		return
	}
	report, err := h.service.MyReport(ctx, p)
	if err != nil && !errors.Is(err, attendance.ErrNoReports) {
		h.handleServerError(w, "load report", err)
		return
	}
	status, err := h.service.TodayStatus(ctx)
	if err != nil {
		h.logger.Warn("load today status", slog.Any("error", err))
		status = nil
	}

	data := view.TemplateData{
		Title:       "تقريري الشهري",
		CurrentPath: "/attendance/me",
		Data:        newEmployeeVM(p, archive, report, status),
	}
	if err := h.templates.Render(w, "pages/employee.html", data); err != nil {
		h.handleServerError(w, "render employee page", err)
	}
}

func (h *Handler) handleEmployeePDF(w http.ResponseWriter, r *http.Request) {
	p, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.MyReport(ctx, p)
	if errors.Is(err, attendance.ErrNoReports) {
		httpx.Problem(w, http.StatusNotFound, "No Reports", attendance.MsgNoRecords)
		return
	}
	if err != nil {
		h.handleServerError(w, "load report", err)
		return
	}

	reportView := export.BuildEmployeeReport(report, p)
	if reportView.Empty {
		httpx.Problem(w, http.StatusNotFound, "No Reports", reportView.EmptyMsg)
		return
	}
	html, err := h.renderer.RenderEmployeeReport(reportView)
	if err != nil {
		h.handleServerError(w, "render employee html", err)
		return
	}
	key := fmt.Sprintf("employee:%s:%s", report.EmployeeID, p.Key())
	data, err := h.pdf.Export(ctx, key, html)
	h.metrics.CountExport("employee_pdf", err)
	if err != nil {
		h.logger.Error("export employee pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", attendance.MsgExportFailed)
		return
	}

	streamAttachment(w, export.EmployeeFileName(report.Name, p), "application/pdf", data)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "checkin", h.service.CheckIn)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, "checkout", h.service.CheckOut)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, name string, action func(context.Context) (*hrapi.ActionResult, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := action(ctx)
	if err != nil {
		h.logger.Error(name+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Action Failed", attendance.MsgUpstreamFailed)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/attendance/me", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleTodayStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	status, err := h.service.TodayStatus(ctx)
	if err != nil {
		h.handleServerError(w, "load today status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

// parsePeriod reads year and month from the query, defaulting to the
// current month.
func (h *Handler) parsePeriod(r *http.Request) (attendance.Period, error) {
	now := h.now().UTC()
	p := attendance.Period{Year: now.Year(), Month: int(now.Month())}

	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return attendance.Period{}, fmt.Errorf("%w: year", httpx.ErrValidation)
		}
		p.Year = year
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			return attendance.Period{}, fmt.Errorf("%w: month", httpx.ErrValidation)
		}
		p.Month = month
	}
	if !p.Valid() {
		return attendance.Period{}, fmt.Errorf("%w: period %s", httpx.ErrValidation, p.Key())
	}
	return p, nil
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, slog.Any("error", err))
	switch {
	case errors.Is(err, hrapi.ErrUnavailable) || errors.Is(err, hrapi.ErrUnauthorized):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUpstream, attendance.MsgUpstreamFailed))
	case errors.Is(err, attendance.ErrInvalidPeriod):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func streamAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	_, _ = w.Write(data)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
