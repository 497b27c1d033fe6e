package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

const recurringColumns = `id, day, time_slot, department, year, subject, room_num, booked_by, submission_id, created_at, updated_at`

// RecurringScheduleRepository persists weekly recurring bookings.
type RecurringScheduleRepository struct {
	db      *sqlx.DB
	retries int
}

// NewRecurringScheduleRepository constructs the repository.
func NewRecurringScheduleRepository(db *sqlx.DB) *RecurringScheduleRepository {
	return &RecurringScheduleRepository{db: db}
}

// WithReadRetries sets how many times transient read failures are retried.
func (r *RecurringScheduleRepository) WithReadRetries(n int) *RecurringScheduleRepository {
	if n > 0 {
		r.retries = n
	}
	return r
}

func (r *RecurringScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns recurring bookings for a department and year, optionally narrowed to one day.
func (r *RecurringScheduleRepository) List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error) {
	conditions := []string{"department = $1", "year = $2"}
	args := []interface{}{filter.Department, filter.Year}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	query := fmt.Sprintf("SELECT %s FROM recurring_schedules WHERE %s ORDER BY day, time_slot", recurringColumns, strings.Join(conditions, " AND "))

	var schedules []models.RecurringSchedule
	err := retryRead(ctx, r.retries, func() error {
		schedules = nil
		return r.db.SelectContext(ctx, &schedules, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list recurring schedules: %w", err)
	}
	return schedules, nil
}

// FindByID returns a recurring booking by identifier.
func (r *RecurringScheduleRepository) FindByID(ctx context.Context, id string) (*models.RecurringSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_schedules WHERE id = $1 LIMIT 1", recurringColumns)
	var schedule models.RecurringSchedule
	err := retryRead(ctx, r.retries, func() error {
		return r.db.GetContext(ctx, &schedule, query, id)
	})
	if err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find recurring schedule: %w", err)
	}
	return &schedule, nil
}

// FindBySlot returns the booking occupying a weekday slot, or sql.ErrNoRows.
func (r *RecurringScheduleRepository) FindBySlot(ctx context.Context, department, year string, day models.Weekday, timeSlot string) (*models.RecurringSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_schedules WHERE department = $1 AND year = $2 AND day = $3 AND time_slot = $4 LIMIT 1", recurringColumns)
	var schedule models.RecurringSchedule
	err := retryRead(ctx, r.retries, func() error {
		return r.db.GetContext(ctx, &schedule, query, department, year, day, timeSlot)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find recurring schedule by slot: %w", err)
	}
	return &schedule, nil
}

// Create inserts a recurring booking using exec when provided, otherwise the pool.
func (r *RecurringScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.RecurringSchedule) error {
	if schedule == nil {
		return fmt.Errorf("recurring schedule payload is nil")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO recurring_schedules (id, day, time_slot, department, year, subject, room_num, booked_by, submission_id, created_at, updated_at)
VALUES (:id, :day, :time_slot, :department, :year, :subject, :room_num, :booked_by, :submission_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, schedule); err != nil {
		return fmt.Errorf("create recurring schedule: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a recurring booking.
func (r *RecurringScheduleRepository) Update(ctx context.Context, schedule *models.RecurringSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE recurring_schedules SET day = :day, time_slot = :time_slot, department = :department, year = :year, subject = :subject, room_num = :room_num, booked_by = :booked_by, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		if appErrors.IsInvalidText(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update recurring schedule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a recurring booking.
func (r *RecurringScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_schedules WHERE id = $1`, id)
	if err != nil {
		if appErrors.IsInvalidText(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete recurring schedule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
