package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

type recurringSlotFinder interface {
	FindBySlot(ctx context.Context, department, year string, day models.Weekday, timeSlot string) (*models.RecurringSchedule, error)
}

type overrideSlotFinder interface {
	FindBySlot(ctx context.Context, department, year string, date models.Date, timeSlot string) (*models.ScheduleOverride, error)
}

type pendingSlotFinder interface {
	ListPendingBySlot(ctx context.Context, department, year string, day models.Weekday, timeSlot string) ([]models.ShowSubmission, error)
}

// SlotCandidate is a slot someone wants to book permanently.
type SlotCandidate struct {
	Department string
	Year       string
	Day        models.Weekday
	TimeSlot   string
	// WeekStart selects the concrete week whose override is consulted.
	WeekStart models.Date
	// ExcludeSubmissionID skips the submission being accepted.
	ExcludeSubmissionID string
	// ExcludeRecurringID skips the recurring row being edited.
	ExcludeRecurringID string
}

// ConflictChecker decides whether a candidate slot can become a recurring booking.
type ConflictChecker struct {
	catalog     *SlotCatalog
	recurring   recurringSlotFinder
	overrides   overrideSlotFinder
	submissions pendingSlotFinder
}

// NewConflictChecker constructs the checker.
func NewConflictChecker(catalog *SlotCatalog, recurring recurringSlotFinder, overrides overrideSlotFinder, submissions pendingSlotFinder) *ConflictChecker {
	if catalog == nil {
		catalog = NewSlotCatalog(nil)
	}
	return &ConflictChecker{catalog: catalog, recurring: recurring, overrides: overrides, submissions: submissions}
}

// Check runs every rule in order: catalog membership, recurring booking,
// unavailable override on the concrete date, then competing pending submissions.
// A recurring booking blocks even when an override frees the concrete week,
// since the promotion applies to every week.
func (c *ConflictChecker) Check(ctx context.Context, candidate SlotCandidate) error {
	if err := c.CheckRecurring(ctx, candidate); err != nil {
		return err
	}

	date := DateForDay(candidate.WeekStart, candidate.Day)
	override, err := c.overrides.FindBySlot(ctx, candidate.Department, candidate.Year, date, candidate.TimeSlot)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Storage(err, "failed to check schedule overrides")
	}
	if err == nil && override.Status == models.OverrideUnavailable {
		return slotConflictError(models.SlotConflict{
			Kind:     models.ConflictOverride,
			EntityID: override.ID,
			Title:    override.Subject,
			Owner:    override.BookedBy,
			Day:      candidate.Day,
			Date:     date.String(),
			TimeSlot: candidate.TimeSlot,
		})
	}

	pending, err := c.submissions.ListPendingBySlot(ctx, candidate.Department, candidate.Year, candidate.Day, candidate.TimeSlot)
	if err != nil {
		return appErrors.Storage(err, "failed to check pending submissions")
	}
	for _, other := range pending {
		if other.ID == candidate.ExcludeSubmissionID {
			continue
		}
		return slotConflictError(models.SlotConflict{
			Kind:     models.ConflictPending,
			EntityID: other.ID,
			Title:    other.ShowTitle,
			Owner:    other.ApplicantName,
			Day:      candidate.Day,
			TimeSlot: candidate.TimeSlot,
		})
	}
	return nil
}

// CheckRecurring validates catalog membership and weekly occupancy only.
func (c *ConflictChecker) CheckRecurring(ctx context.Context, candidate SlotCandidate) error {
	if err := c.checkCatalog(candidate); err != nil {
		return err
	}
	existing, err := c.recurring.FindBySlot(ctx, candidate.Department, candidate.Year, candidate.Day, candidate.TimeSlot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Storage(err, "failed to check recurring schedules")
	}
	if existing.ID == candidate.ExcludeRecurringID {
		return nil
	}
	return recurringConflict(existing)
}

// OccupiedConflict builds the conflict for a candidate whose insert lost a race
// on the unique slot index. It names the booking now holding the slot when that
// row can be read back, otherwise it reports the slot alone.
func (c *ConflictChecker) OccupiedConflict(ctx context.Context, candidate SlotCandidate) error {
	existing, err := c.recurring.FindBySlot(ctx, candidate.Department, candidate.Year, candidate.Day, candidate.TimeSlot)
	if err == nil && existing.ID != candidate.ExcludeRecurringID {
		return recurringConflict(existing)
	}
	return slotConflictError(models.SlotConflict{Kind: models.ConflictRecurring, Day: candidate.Day, TimeSlot: candidate.TimeSlot})
}

func (c *ConflictChecker) checkCatalog(candidate SlotCandidate) error {
	if err := c.catalog.ValidateDepartment(candidate.Department); err != nil {
		return err
	}
	if err := ValidateYear(candidate.Year); err != nil {
		return err
	}
	if !c.catalog.Contains(candidate.Department, candidate.Day, candidate.TimeSlot) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %s is not a bookable slot", candidate.Day, candidate.TimeSlot))
	}
	return nil
}

func recurringConflict(existing *models.RecurringSchedule) error {
	return slotConflictError(models.SlotConflict{
		Kind:     models.ConflictRecurring,
		EntityID: existing.ID,
		Title:    existing.Subject,
		Owner:    existing.BookedBy,
		Day:      existing.Day,
		TimeSlot: existing.TimeSlot,
	})
}

func slotConflictError(conflict models.SlotConflict) error {
	domainErr := models.NewSlotConflictError(conflict)
	wrapped := appErrors.Wrap(domainErr, appErrors.ErrSlotConflict.Code, appErrors.ErrSlotConflict.Status, fmt.Sprintf("slot conflict: %s", domainErr.Message))
	return appErrors.WithDetails(wrapped, conflict)
}

// conflictKind extracts the blocking entity kind from a slot conflict error.
func conflictKind(err error) (models.ConflictKind, bool) {
	var domainErr *models.SlotConflictError
	if errors.As(err, &domainErr) {
		return domainErr.Conflict.Kind, true
	}
	return "", false
}
