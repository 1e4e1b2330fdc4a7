package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	CountForMonth(ctx context.Context, month string, status models.RequestStatus) (int, error)
	SupplierPayments(ctx context.Context, month string) ([]models.SupplierPayment, error)
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidateMonth checks that a month argument is a YYYY-MM value.
func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
	}
	return nil
}

// AnalyticsService provides read-optimised monthly projections with cache integration.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// TotalRequests counts all requests for a month. The boolean indicates whether
// the value originated from cache.
func (s *AnalyticsService) TotalRequests(ctx context.Context, month string) (models.MonthlyCount, bool, error) {
	return s.countForMonth(ctx, month, "")
}

// RejectedRequests counts rejected requests for a month.
func (s *AnalyticsService) RejectedRequests(ctx context.Context, month string) (models.MonthlyCount, bool, error) {
	return s.countForMonth(ctx, month, models.StatusRejected)
}

// CompletedRequests counts completed requests for a month.
func (s *AnalyticsService) CompletedRequests(ctx context.Context, month string) (models.MonthlyCount, bool, error) {
	return s.countForMonth(ctx, month, models.StatusCompleted)
}

func (s *AnalyticsService) countForMonth(ctx context.Context, month string, status models.RequestStatus) (models.MonthlyCount, bool, error) {
	if err := ValidateMonth(month); err != nil {
		return models.MonthlyCount{}, false, err
	}

	cacheKey := makeAnalyticsCacheKey("count", month, string(status))
	var cached models.MonthlyCount
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return models.MonthlyCount{}, false, fmt.Errorf("get count cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	count, err := s.repo.CountForMonth(ctx, month, status)
	if err != nil {
		return models.MonthlyCount{}, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_count", time.Since(start))
	}

	result := models.MonthlyCount{Month: month, Count: count}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache month count", zap.Error(err))
		}
	}
	return result, false, nil
}

// SupplierPayments returns per-supplier completed payment totals for a month.
func (s *AnalyticsService) SupplierPayments(ctx context.Context, month string) ([]models.SupplierPayment, bool, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, false, err
	}

	cacheKey := makeAnalyticsCacheKey("payments", month)
	var cached []models.SupplierPayment
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get payments cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	payments, err := s.repo.SupplierPayments(ctx, month)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_payments", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, payments, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache supplier payments", zap.Error(err))
		}
	}
	return payments, false, nil
}

// MonthlyOverview combines the month counters with supplier payment totals.
func (s *AnalyticsService) MonthlyOverview(ctx context.Context, month string) (models.MonthlyOverview, bool, error) {
	if err := ValidateMonth(month); err != nil {
		return models.MonthlyOverview{}, false, err
	}

	cacheKey := makeAnalyticsCacheKey("overview", month)
	var cached models.MonthlyOverview
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return models.MonthlyOverview{}, false, fmt.Errorf("get overview cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	total, _, err := s.TotalRequests(ctx, month)
	if err != nil {
		return models.MonthlyOverview{}, false, err
	}
	rejected, _, err := s.RejectedRequests(ctx, month)
	if err != nil {
		return models.MonthlyOverview{}, false, err
	}
	completed, _, err := s.CompletedRequests(ctx, month)
	if err != nil {
		return models.MonthlyOverview{}, false, err
	}
	payments, _, err := s.SupplierPayments(ctx, month)
	if err != nil {
		return models.MonthlyOverview{}, false, err
	}

	overview := models.MonthlyOverview{
		Month:             month,
		TotalRequests:     total.Count,
		RejectedRequests:  rejected.Count,
		CompletedRequests: completed.Count,
		SupplierPayments:  payments,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, overview, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache monthly overview", zap.Error(err))
		}
	}
	return overview, false, nil
}

// InvalidateMonth drops cached analytics for a month after a request mutation.
func (s *AnalyticsService) InvalidateMonth(ctx context.Context, month string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "analytics:*"+month+"*"); err != nil && s.logger != nil {
		s.logger.Warn("invalidate analytics cache", zap.String("month", month), zap.Error(err))
	}
}

// SystemMetrics returns the runtime instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
