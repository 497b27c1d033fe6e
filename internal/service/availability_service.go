package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

type recurringScheduleReader interface {
	List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error)
}

type scheduleOverrideReader interface {
	ListRange(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, error)
}

type pendingSubmissionReader interface {
	ListPending(ctx context.Context, department, year string) ([]models.ShowSubmission, error)
}

// AvailabilityService loads schedule state and resolves weekly availability grids.
type AvailabilityService struct {
	catalog     *SlotCatalog
	recurring   recurringScheduleReader
	overrides   scheduleOverrideReader
	submissions pendingSubmissionReader
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAvailabilityService constructs the service. cache and metrics may be nil.
func NewAvailabilityService(
	catalog *SlotCatalog,
	recurring recurringScheduleReader,
	overrides scheduleOverrideReader,
	submissions pendingSubmissionReader,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *AvailabilityService {
	if catalog == nil {
		catalog = NewSlotCatalog(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		catalog:     catalog,
		recurring:   recurring,
		overrides:   overrides,
		submissions: submissions,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// Catalog exposes the slot catalog backing the grid.
func (s *AvailabilityService) Catalog() *SlotCatalog {
	return s.catalog
}

// GetWeeklyAvailability returns the resolved grid for a week. The boolean reports a cache hit.
func (s *AvailabilityService) GetWeeklyAvailability(ctx context.Context, query models.AvailabilityQuery) (*models.WeeklyAvailability, bool, error) {
	query.Department = strings.TrimSpace(query.Department)
	query.Year = strings.TrimSpace(query.Year)
	if err := s.catalog.ValidateDepartment(query.Department); err != nil {
		return nil, false, err
	}
	if err := ValidateYear(query.Year); err != nil {
		return nil, false, err
	}
	weekStart, err := ParseWeekStart(query.WeekStart)
	if err != nil {
		return nil, false, err
	}

	cacheKey := availabilityCacheKey(query.Department, query.Year, weekStart.String())
	var cached models.WeeklyAvailability
	if hit, cacheErr := s.cache.Get(ctx, cacheKey, &cached); cacheErr == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	inputs, err := s.load(ctx, weekStart, query.Department, query.Year)
	if err != nil {
		return nil, false, err
	}
	grid := ResolveWeek(s.catalog, inputs)
	s.metrics.ObserveResolve(time.Since(start))

	if err := s.cache.Set(ctx, cacheKey, grid, 0); err != nil {
		s.logger.Debug("availability cache write skipped", zap.String("key", cacheKey), zap.Error(err))
	}
	return &grid, false, nil
}

func (s *AvailabilityService) load(ctx context.Context, weekStart models.Date, department, year string) (WeekInputs, error) {
	inputs := WeekInputs{WeekStart: weekStart, Department: department, Year: year}

	start := time.Now()
	recurring, err := s.recurring.List(ctx, models.RecurringScheduleFilter{Department: department, Year: year})
	s.metrics.ObserveDBQuery("recurring_list", time.Since(start))
	if err != nil {
		return inputs, appErrors.Storage(err, "failed to load recurring schedules")
	}

	start = time.Now()
	overrides, err := s.overrides.ListRange(ctx, models.ScheduleOverrideFilter{
		Department: department,
		Year:       year,
		From:       weekStart,
		To:         weekStart.AddDays(6),
	})
	s.metrics.ObserveDBQuery("override_range", time.Since(start))
	if err != nil {
		return inputs, appErrors.Storage(err, "failed to load schedule overrides")
	}

	start = time.Now()
	pending, err := s.submissions.ListPending(ctx, department, year)
	s.metrics.ObserveDBQuery("pending_list", time.Since(start))
	if err != nil {
		return inputs, appErrors.Storage(err, "failed to load pending submissions")
	}

	inputs.Recurring = recurring
	inputs.Overrides = overrides
	inputs.Pending = pending
	return inputs, nil
}
