package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

const overrideColumns = `id, date, time_slot, department, year, status, subject, room_num, booked_by, created_at, updated_at`

// ScheduleOverrideRepository persists date-specific slot overrides.
type ScheduleOverrideRepository struct {
	db      *sqlx.DB
	retries int
}

// NewScheduleOverrideRepository constructs the repository.
func NewScheduleOverrideRepository(db *sqlx.DB) *ScheduleOverrideRepository {
	return &ScheduleOverrideRepository{db: db}
}

// WithReadRetries sets how many times transient read failures are retried.
func (r *ScheduleOverrideRepository) WithReadRetries(n int) *ScheduleOverrideRepository {
	if n > 0 {
		r.retries = n
	}
	return r
}

// ListRange returns overrides whose date falls within [From, To].
func (r *ScheduleOverrideRepository) ListRange(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE department = $1 AND year = $2 AND date BETWEEN $3 AND $4 ORDER BY date, time_slot", overrideColumns)
	var overrides []models.ScheduleOverride
	err := retryRead(ctx, r.retries, func() error {
		overrides = nil
		return r.db.SelectContext(ctx, &overrides, query, filter.Department, filter.Year, filter.From, filter.To)
	})
	if err != nil {
		return nil, fmt.Errorf("list schedule overrides: %w", err)
	}
	return overrides, nil
}

// FindByID returns an override by identifier.
func (r *ScheduleOverrideRepository) FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE id = $1 LIMIT 1", overrideColumns)
	var override models.ScheduleOverride
	err := retryRead(ctx, r.retries, func() error {
		return r.db.GetContext(ctx, &override, query, id)
	})
	if err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find schedule override: %w", err)
	}
	return &override, nil
}

// FindBySlot returns the override for a concrete date and slot, or sql.ErrNoRows.
func (r *ScheduleOverrideRepository) FindBySlot(ctx context.Context, department, year string, date models.Date, timeSlot string) (*models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE department = $1 AND year = $2 AND date = $3 AND time_slot = $4 LIMIT 1", overrideColumns)
	var override models.ScheduleOverride
	err := retryRead(ctx, r.retries, func() error {
		return r.db.GetContext(ctx, &override, query, department, year, date, timeSlot)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find schedule override by slot: %w", err)
	}
	return &override, nil
}

// Upsert inserts the override or replaces the one already set for the same date and slot.
// The stored id and created_at are written back into override.
func (r *ScheduleOverrideRepository) Upsert(ctx context.Context, override *models.ScheduleOverride) error {
	if override == nil {
		return fmt.Errorf("schedule override payload is nil")
	}
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	override.CreatedAt = now
	override.UpdatedAt = now

	const query = `INSERT INTO schedule_overrides (id, date, time_slot, department, year, status, subject, room_num, booked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (date, time_slot, department, year) DO UPDATE
SET status = EXCLUDED.status, subject = EXCLUDED.subject, room_num = EXCLUDED.room_num, booked_by = EXCLUDED.booked_by, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		override.ID, override.Date, override.TimeSlot, override.Department, override.Year, override.Status,
		override.Subject, override.RoomNum, override.BookedBy, override.CreatedAt, override.UpdatedAt)
	if err := row.Scan(&override.ID, &override.CreatedAt); err != nil {
		return fmt.Errorf("upsert schedule override: %w", err)
	}
	return nil
}

// Delete removes an override.
func (r *ScheduleOverrideRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE id = $1`, id)
	if err != nil {
		if appErrors.IsInvalidText(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete schedule override: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBefore purges overrides dated strictly before cutoff and returns how many were removed.
func (r *ScheduleOverrideRepository) DeleteBefore(ctx context.Context, cutoff models.Date) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge schedule overrides: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge schedule overrides: %w", err)
	}
	return affected, nil
}
