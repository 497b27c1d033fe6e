package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

type scheduleOverrideRepository interface {
	ListRange(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error)
	Upsert(ctx context.Context, override *models.ScheduleOverride) error
	Delete(ctx context.Context, id string) error
}

// maxOverrideRange bounds listing requests to roughly one academic year.
const maxOverrideRange = 400

// ScheduleOverrideService manages date-specific overrides such as
// "this week only, the slot is free" or "this Friday is taken".
type ScheduleOverrideService struct {
	repo      scheduleOverrideRepository
	catalog   *SlotCatalog
	cache     *CacheService
	events    *EventService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleOverrideService instantiates ScheduleOverrideService.
func NewScheduleOverrideService(repo scheduleOverrideRepository, catalog *SlotCatalog, cache *CacheService, events *EventService, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *ScheduleOverrideService {
	if catalog == nil {
		catalog = NewSlotCatalog(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerScheduleValidations(validate)
	return &ScheduleOverrideService{repo: repo, catalog: catalog, cache: cache, events: events, audit: audit, validator: validate, logger: logger}
}

// List returns overrides between from and to inclusive.
func (s *ScheduleOverrideService) List(ctx context.Context, department, year, from, to string) ([]models.ScheduleOverride, error) {
	if err := s.catalog.ValidateDepartment(department); err != nil {
		return nil, err
	}
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	fromDate, err := models.ParseDate(from)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from date")
	}
	toDate, err := models.ParseDate(to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date")
	}
	if toDate.Before(fromDate.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	if toDate.Sub(fromDate.Time).Hours()/24 > maxOverrideRange {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("range must not exceed %d days", maxOverrideRange))
	}
	overrides, err := s.repo.ListRange(ctx, models.ScheduleOverrideFilter{Department: department, Year: year, From: fromDate, To: toDate})
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list schedule overrides")
	}
	return overrides, nil
}

// Upsert sets the override for a date and slot, replacing any existing one.
func (s *ScheduleOverrideService) Upsert(ctx context.Context, actor models.Actor, req models.ScheduleOverrideRequest) (*models.ScheduleOverride, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override date")
	}
	department := strings.TrimSpace(req.Department)
	if err := s.catalog.ValidateDepartment(department); err != nil {
		return nil, err
	}
	timeSlot := strings.TrimSpace(req.TimeSlot)
	if !s.catalog.Contains(department, date.Weekday(), timeSlot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %s is not a bookable slot on %s", date.Weekday(), timeSlot, date))
	}

	override := &models.ScheduleOverride{
		Date:       date,
		TimeSlot:   timeSlot,
		Department: department,
		Year:       req.Year,
		Status:     models.OverrideStatus(req.Status),
		Subject:    strings.TrimSpace(req.Subject),
		RoomNum:    strings.TrimSpace(req.RoomNum),
		BookedBy:   strings.TrimSpace(req.BookedBy),
	}
	if override.BookedBy == "" && override.Status == models.OverrideUnavailable {
		override.BookedBy = actor.Email
	}
	if err := s.repo.Upsert(ctx, override); err != nil {
		return nil, appErrors.Storage(err, "failed to save schedule override")
	}
	s.changed(ctx, actor, models.AuditActionOverrideUpsert, override, nil, override)
	return override, nil
}

// Delete removes an override so the recurring state applies again.
func (s *ScheduleOverrideService) Delete(ctx context.Context, actor models.Actor, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule override not found")
		}
		return appErrors.Storage(err, "failed to load schedule override")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule override not found")
		}
		return appErrors.Storage(err, "failed to delete schedule override")
	}
	s.changed(ctx, actor, models.AuditActionOverrideDelete, existing, existing, nil)
	return nil
}

func (s *ScheduleOverrideService) changed(ctx context.Context, actor models.Actor, action string, subject, before, after *models.ScheduleOverride) {
	_ = s.cache.InvalidateSchedule(ctx, subject.Department, subject.Year)
	s.events.Emit(models.EventOverrideChanged, subject.Department, subject.Year, actor, map[string]interface{}{
		"action":   action,
		"previous": before,
		"current":  after,
	})
	var oldValues, newValues interface{}
	if before != nil {
		oldValues = before
	}
	if after != nil {
		newValues = after
	}
	recordAudit(ctx, s.audit, s.logger, actor, auditEntry{
		action:     action,
		resource:   "schedule_overrides",
		resourceID: subject.ID,
		oldValues:  oldValues,
		newValues:  newValues,
	})
}
