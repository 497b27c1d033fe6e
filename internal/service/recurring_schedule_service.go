package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

type recurringScheduleRepository interface {
	List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error)
	FindByID(ctx context.Context, id string) (*models.RecurringSchedule, error)
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.RecurringSchedule) error
	Update(ctx context.Context, schedule *models.RecurringSchedule) error
	Delete(ctx context.Context, id string) error
}

// RecurringScheduleService manages weekly bookings entered by administrators.
type RecurringScheduleService struct {
	repo      recurringScheduleRepository
	checker   *ConflictChecker
	cache     *CacheService
	events    *EventService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecurringScheduleService instantiates RecurringScheduleService.
func NewRecurringScheduleService(repo recurringScheduleRepository, checker *ConflictChecker, cache *CacheService, events *EventService, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *RecurringScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerScheduleValidations(validate)
	return &RecurringScheduleService{repo: repo, checker: checker, cache: cache, events: events, audit: audit, validator: validate, logger: logger}
}

// List returns the recurring bookings of a department and year.
func (s *RecurringScheduleService) List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error) {
	if strings.TrimSpace(filter.Department) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	if err := ValidateYear(filter.Year); err != nil {
		return nil, err
	}
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list recurring schedules")
	}
	return schedules, nil
}

// Create books a weekly slot after checking it is free.
func (s *RecurringScheduleService) Create(ctx context.Context, actor models.Actor, req models.RecurringScheduleRequest) (*models.RecurringSchedule, error) {
	schedule, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.checker.CheckRecurring(ctx, candidateFor(schedule, "")); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, nil, schedule); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, s.checker.OccupiedConflict(ctx, candidateFor(schedule, ""))
		}
		return nil, appErrors.Storage(err, "failed to create recurring schedule")
	}
	s.changed(ctx, actor, models.AuditActionRecurringCreate, schedule.ID, nil, schedule)
	return schedule, nil
}

// Update moves or edits a weekly booking.
func (s *RecurringScheduleService) Update(ctx context.Context, actor models.Actor, id string, req models.RecurringScheduleRequest) (*models.RecurringSchedule, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.SubmissionID = existing.SubmissionID
	updated.CreatedAt = existing.CreatedAt

	if err := s.checker.CheckRecurring(ctx, candidateFor(updated, existing.ID)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recurring schedule not found")
		}
		if appErrors.IsUniqueViolation(err) {
			return nil, s.checker.OccupiedConflict(ctx, candidateFor(updated, existing.ID))
		}
		return nil, appErrors.Storage(err, "failed to update recurring schedule")
	}
	if existing.Department != updated.Department || existing.Year != updated.Year {
		_ = s.cache.InvalidateSchedule(ctx, existing.Department, existing.Year)
	}
	s.changed(ctx, actor, models.AuditActionRecurringUpdate, updated.ID, existing, updated)
	return updated, nil
}

// Delete frees a weekly slot.
func (s *RecurringScheduleService) Delete(ctx context.Context, actor models.Actor, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "recurring schedule not found")
		}
		return appErrors.Storage(err, "failed to delete recurring schedule")
	}
	s.changed(ctx, actor, models.AuditActionRecurringDelete, existing.ID, existing, nil)
	return nil
}

func (s *RecurringScheduleService) find(ctx context.Context, id string) (*models.RecurringSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recurring schedule not found")
		}
		return nil, appErrors.Storage(err, "failed to load recurring schedule")
	}
	return schedule, nil
}

func (s *RecurringScheduleService) fromRequest(req models.RecurringScheduleRequest) (*models.RecurringSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring schedule payload")
	}
	day, _ := models.ParseWeekday(req.Day)
	return &models.RecurringSchedule{
		Day:        day,
		TimeSlot:   strings.TrimSpace(req.TimeSlot),
		Department: strings.TrimSpace(req.Department),
		Year:       req.Year,
		Subject:    strings.TrimSpace(req.Subject),
		RoomNum:    strings.TrimSpace(req.RoomNum),
		BookedBy:   strings.TrimSpace(req.BookedBy),
	}, nil
}

// changed runs the shared post-write steps: cache invalidation, event and audit.
func (s *RecurringScheduleService) changed(ctx context.Context, actor models.Actor, action, id string, before, after *models.RecurringSchedule) {
	current := after
	if current == nil {
		current = before
	}
	_ = s.cache.InvalidateSchedule(ctx, current.Department, current.Year)
	s.events.Emit(models.EventRecurringChanged, current.Department, current.Year, actor, map[string]interface{}{
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
		resource:   "recurring_schedules",
		resourceID: id,
		oldValues:  oldValues,
		newValues:  newValues,
	})
}

func candidateFor(schedule *models.RecurringSchedule, excludeID string) SlotCandidate {
	return SlotCandidate{
		Department:         schedule.Department,
		Year:               schedule.Year,
		Day:                schedule.Day,
		TimeSlot:           schedule.TimeSlot,
		ExcludeRecurringID: excludeID,
	}
}
