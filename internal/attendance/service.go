package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qayd-hr/qayd/internal/hrapi"
)

// ReportsAPI is the slice of the HR API the service depends on.
type ReportsAPI interface {
	Archive(ctx context.Context, role hrapi.Role) ([]hrapi.ArchiveItem, error)
	MyMonthlyReport(ctx context.Context, year, month int) (*hrapi.MonthlyReport, error)
	AllMonthlyReports(ctx context.Context, year, month int) ([]hrapi.MonthlyReport, error)
	CheckIn(ctx context.Context) (*hrapi.ActionResult, error)
	CheckOut(ctx context.Context) (*hrapi.ActionResult, error)
	TodayStatus(ctx context.Context) (*hrapi.TodayStatus, error)
}

// Service serves monthly attendance reports through the cache.
type Service struct {
	api    ReportsAPI
	cache  *Cache
	logger *slog.Logger
}

// NewService wires the report service.
func NewService(api ReportsAPI, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, cache: cache, logger: logger}
}

// AllReports returns every employee's report for the period, cached per
// period under the current cache version.
func (s *Service) AllReports(ctx context.Context, p Period) ([]hrapi.MonthlyReport, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p.Key())
	}
	key, err := s.cache.BuildKey(ctx, keyAllReports(p))
	if err != nil {
		return nil, err
	}
	var reports []hrapi.MonthlyReport
	err = s.cache.FetchJSON(ctx, key, &reports, func(ctx context.Context) (interface{}, error) {
		return s.api.AllMonthlyReports(ctx, p.Year, p.Month)
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// MyReport returns the calling employee's report for the period.
func (s *Service) MyReport(ctx context.Context, p Period) (*hrapi.MonthlyReport, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, p.Key())
	}
	key, err := s.cache.BuildKey(ctx, keyMyReport(p))
	if err != nil {
		return nil, err
	}
	var report hrapi.MonthlyReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		rep, err := s.api.MyMonthlyReport(ctx, p.Year, p.Month)
		if err != nil {
			return nil, err
		}
		return rep, nil
	})
	if errors.Is(err, hrapi.ErrNotFound) {
		return nil, ErrNoReports
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Archive lists the selectable report periods for a role, newest first as
// delivered by the upstream.
func (s *Service) Archive(ctx context.Context, role hrapi.Role) ([]hrapi.ArchiveItem, error) {
	key, err := s.cache.BuildKey(ctx, keyArchive(string(role)))
	if err != nil {
		return nil, err
	}
	var items []hrapi.ArchiveItem
	err = s.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (interface{}, error) {
		return s.api.Archive(ctx, role)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CheckIn proxies a check-in and refreshes the cache version, since the
// action changes today's records.
func (s *Service) CheckIn(ctx context.Context) (*hrapi.ActionResult, error) {
	result, err := s.api.CheckIn(ctx)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return result, nil
}

// CheckOut proxies a check-out and refreshes the cache version.
func (s *Service) CheckOut(ctx context.Context) (*hrapi.ActionResult, error) {
	result, err := s.api.CheckOut(ctx)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return result, nil
}

// TodayStatus proxies the open check-in query. Never cached: staleness
// here would show the wrong button state.
func (s *Service) TodayStatus(ctx context.Context) (*hrapi.TodayStatus, error) {
	return s.api.TodayStatus(ctx)
}

// Invalidate drops all cached reports. Used by the warmup job after the
// upstream re-runs its aggregation.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump failed", slog.Any("error", err))
	}
}
