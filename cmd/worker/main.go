package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/qayd-hr/qayd/internal/app"
	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/attendance/export"
	"github.com/qayd-hr/qayd/internal/hrapi"
	"github.com/qayd-hr/qayd/internal/platform/cache"
	"github.com/qayd-hr/qayd/jobs"
	"github.com/qayd-hr/qayd/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	hrClient, err := hrapi.NewClient(cfg.HRAPIBaseURL, hrapi.StaticToken(cfg.HRAPIToken),
		hrapi.WithHTTPClient(&http.Client{Timeout: cfg.HRAPITimeout}))
	if err != nil {
		logger.Error("init hr api client", slog.Any("error", err))
		os.Exit(1)
	}

	reportCache := attendance.NewCache(redisClient, cfg.CacheTTL)
	service := attendance.NewService(hrClient, reportCache, logger)

	renderer, err := export.NewHTMLRenderer()
	if err != nil {
		logger.Error("parse report templates", slog.Any("error", err))
		os.Exit(1)
	}
	gotenberg, err := report.NewClient(cfg.GotenbergURL)
	if err != nil {
		logger.Error("init gotenberg client", slog.Any("error", err))
		os.Exit(1)
	}
	pdfExporter := export.NewPDFExporter(gotenberg)

	warmupJob := jobs.NewReportWarmupJob(service, logger, nil)
	snapshotJob := jobs.NewGridSnapshotJob(service, renderer, pdfExporter, cfg.SnapshotDir, logger, nil)

	warmupTask, err := jobs.NewReportWarmupTask(jobs.WarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	snapshotTask, err := jobs.NewGridSnapshotTask(jobs.SnapshotPayload{})
	if err != nil {
		logger.Error("build snapshot task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskGridSnapshot, Handler: snapshotJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 1 * *", Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
