package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/qayd-hr/qayd/internal/app"
	"github.com/qayd-hr/qayd/internal/attendance"
	"github.com/qayd-hr/qayd/internal/attendance/export"
	attendancehttp "github.com/qayd-hr/qayd/internal/attendance/http"
	"github.com/qayd-hr/qayd/internal/hrapi"
	"github.com/qayd-hr/qayd/internal/observability"
	"github.com/qayd-hr/qayd/internal/platform/cache"
	"github.com/qayd-hr/qayd/internal/view"
	"github.com/qayd-hr/qayd/jobs"
	"github.com/qayd-hr/qayd/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	hrClient, err := hrapi.NewClient(cfg.HRAPIBaseURL, hrapi.StaticToken(cfg.HRAPIToken),
		hrapi.WithHTTPClient(&http.Client{Timeout: cfg.HRAPITimeout}))
	if err != nil {
		logger.Error("init hr api client", slog.Any("error", err))
		os.Exit(1)
	}

	reportCache := attendance.NewCache(redisClient, cfg.CacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
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

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()
	attendanceHandler := attendancehttp.NewHandler(logger, service, renderer, pdfExporter, templates, metrics)
	attendanceHandler.WithSnapshots(jobsClient)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Templates:         templates,
		AttendanceHandler: attendanceHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
