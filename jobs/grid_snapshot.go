package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/attendance/export"
	jobmetrics "github.com/qayd-hr/qayd/internal/jobs"
)

// PDFService paginates rendered HTML into a PDF artefact.
type PDFService interface {
	Export(ctx context.Context, key, html string) ([]byte, error)
}

// GridSnapshotJob renders the monthly grid to a PDF file in the snapshot
// directory, where the HR archive share picks it up.
type GridSnapshotJob struct {
	Service  *attendance.Service
	Renderer *export.HTMLRenderer
	PDF      PDFService
	Dir      string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewGridSnapshotJob wires dependencies for the snapshot handler.
func NewGridSnapshotJob(service *attendance.Service, renderer *export.HTMLRenderer, pdf PDFService, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *GridSnapshotJob {
	return &GridSnapshotJob{
		Service:  service,
		Renderer: renderer,
		PDF:      pdf,
		Dir:      dir,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes grid snapshot tasks.
func (j *GridSnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil || j.Renderer == nil || j.PDF == nil {
		return errors.New("grid snapshot: handler not configured")
	}
	if j.Dir == "" {
		// Snapshots are opt-in; without a directory there is nothing to do.
		return nil
	}
	var payload SnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	p := j.period(payload)

	tracker := j.metrics().Track(TaskGridSnapshot)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("period", p.Key()))
	logger.Info("starting grid snapshot")

	snapshotCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	reports, err := j.Service.AllReports(snapshotCtx, p)
	if err != nil {
		resultErr = err
		logger.Error("load reports", slog.Any("error", err))
		return resultErr
	}
	grid := export.BuildGrid(reports, p)
	if grid.Empty {
		logger.Info("no reports to snapshot")
		return resultErr
	}

	html, err := j.Renderer.RenderGrid(grid)
	if err != nil {
		resultErr = err
		logger.Error("render grid", slog.Any("error", err))
		return resultErr
	}
	data, err := j.PDF.Export(snapshotCtx, "snapshot:"+p.Key(), html)
	if err != nil {
		resultErr = err
		logger.Error("export grid", slog.Any("error", err))
		return resultErr
	}

	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		resultErr = err
		return resultErr
	}
	name := fmt.Sprintf("grid_%s_%s.pdf", p.Key(), uuid.NewString())
	path := filepath.Join(j.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		resultErr = err
		logger.Error("write snapshot", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed grid snapshot", slog.String("path", path))
	return resultErr
}

func (j *GridSnapshotJob) period(payload SnapshotPayload) attendance.Period {
	if payload.Year != 0 && payload.Month != 0 {
		return attendance.Period{Year: payload.Year, Month: payload.Month}
	}
	now := j.now()
	return attendance.Period{Year: now.Year(), Month: int(now.Month())}
}

func (j *GridSnapshotJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *GridSnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *GridSnapshotJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
