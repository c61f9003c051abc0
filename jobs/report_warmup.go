package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/hrapi"
	jobmetrics "github.com/qayd-hr/qayd/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportWarmupJob refreshes the report cache so the first dashboard hit of
// the day does not pay the upstream fetch.
type ReportWarmupJob struct {
	Service *attendance.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(service *attendance.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	p := j.period(payload)

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("period", p.Key()))
	logger.Info("starting report warmup")

	// Drop stale entries first so the loads below repopulate fresh data.
	if err := j.Service.Invalidate(ctx); err != nil {
		resultErr = err
		logger.Error("invalidate cache", slog.Any("error", err))
		return resultErr
	}

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := j.Service.AllReports(warmCtx, p); err != nil {
		resultErr = err
		logger.Error("warm all reports", slog.Any("error", err))
		return resultErr
	}
	if _, err := j.Service.Archive(warmCtx, hrapi.RoleAdmin); err != nil {
		resultErr = err
		logger.Error("warm archive", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed report warmup")
	return resultErr
}

func (j *ReportWarmupJob) period(payload WarmupPayload) attendance.Period {
	if payload.Year != 0 && payload.Month != 0 {
		return attendance.Period{Year: payload.Year, Month: payload.Month}
	}
	now := j.now()
	return attendance.Period{Year: now.Year(), Month: int(now.Month())}
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
