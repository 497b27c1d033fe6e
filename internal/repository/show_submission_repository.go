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

const submissionColumns = `id, show_title, applicant_name, applicant_email, organization, description, preferred_day, preferred_time, department, year, result, final_day, final_time, decision_note, decided_by, decided_at, created_at, updated_at`

// ErrSubmissionDecided is returned when a decision targets a submission that is no longer pending.
var ErrSubmissionDecided = errors.New("submission already decided")

// ShowSubmissionRepository persists show submissions.
type ShowSubmissionRepository struct {
	db      *sqlx.DB
	retries int
}

// NewShowSubmissionRepository constructs the repository.
func NewShowSubmissionRepository(db *sqlx.DB) *ShowSubmissionRepository {
	return &ShowSubmissionRepository{db: db}
}

// WithReadRetries sets how many times transient read failures are retried.
func (r *ShowSubmissionRepository) WithReadRetries(n int) *ShowSubmissionRepository {
	if n > 0 {
		r.retries = n
	}
	return r
}

func (r *ShowSubmissionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create stores a new pending submission.
func (r *ShowSubmissionRepository) Create(ctx context.Context, submission *models.ShowSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Result == "" {
		submission.Result = models.SubmissionPending
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now

	const query = `INSERT INTO show_submissions (id, show_title, applicant_name, applicant_email, organization, description, preferred_day, preferred_time, department, year, result, created_at, updated_at)
VALUES (:id, :show_title, :applicant_name, :applicant_email, :organization, :description, :preferred_day, :preferred_time, :department, :year, :result, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create show submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by identifier.
func (r *ShowSubmissionRepository) FindByID(ctx context.Context, id string) (*models.ShowSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM show_submissions WHERE id = $1 LIMIT 1", submissionColumns)
	var submission models.ShowSubmission
	err := retryRead(ctx, r.retries, func() error {
		return r.db.GetContext(ctx, &submission, query, id)
	})
	if err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find show submission: %w", err)
	}
	return &submission, nil
}

// List returns submissions matching the filter along with the total count.
func (r *ShowSubmissionRepository) List(ctx context.Context, filter models.ShowSubmissionFilter) ([]models.ShowSubmission, int, error) {
	baseQuery := `FROM show_submissions WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Year != "" {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Result != "" {
		conditions = append(conditions, fmt.Sprintf("result = $%d", len(args)+1))
		args = append(args, filter.Result)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(show_title) LIKE $%d OR LOWER(applicant_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", submissionColumns, baseQuery, pageSize, offset)
	var submissions []models.ShowSubmission
	err := retryRead(ctx, r.retries, func() error {
		submissions = nil
		return r.db.SelectContext(ctx, &submissions, listQuery, args...)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list show submissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	err = retryRead(ctx, r.retries, func() error {
		return r.db.GetContext(ctx, &total, countQuery, args...)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count show submissions: %w", err)
	}
	return submissions, total, nil
}

// ListPending returns pending submissions for a department and year, oldest first.
func (r *ShowSubmissionRepository) ListPending(ctx context.Context, department, year string) ([]models.ShowSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM show_submissions WHERE department = $1 AND year = $2 AND result = 'pending' ORDER BY created_at", submissionColumns)
	var submissions []models.ShowSubmission
	err := retryRead(ctx, r.retries, func() error {
		submissions = nil
		return r.db.SelectContext(ctx, &submissions, query, department, year)
	})
	if err != nil {
		return nil, fmt.Errorf("list pending show submissions: %w", err)
	}
	return submissions, nil
}

// ListPendingBySlot returns pending submissions that prefer the given weekday slot.
func (r *ShowSubmissionRepository) ListPendingBySlot(ctx context.Context, department, year string, day models.Weekday, timeSlot string) ([]models.ShowSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM show_submissions WHERE department = $1 AND year = $2 AND preferred_day = $3 AND preferred_time = $4 AND result = 'pending' ORDER BY created_at", submissionColumns)
	var submissions []models.ShowSubmission
	err := retryRead(ctx, r.retries, func() error {
		submissions = nil
		return r.db.SelectContext(ctx, &submissions, query, department, year, day, timeSlot)
	})
	if err != nil {
		return nil, fmt.Errorf("list pending show submissions by slot: %w", err)
	}
	return submissions, nil
}

// Decide finalises a pending submission. It returns ErrSubmissionDecided when
// the row is missing or already accepted or rejected.
func (r *ShowSubmissionRepository) Decide(ctx context.Context, exec sqlx.ExtContext, id string, decision models.SubmissionDecision) error {
	const query = `UPDATE show_submissions SET result = $2, final_day = $3, final_time = $4, decision_note = $5, decided_by = $6, decided_at = $7, updated_at = $7
WHERE id = $1 AND result = 'pending'`
	res, err := r.exec(exec).ExecContext(ctx, query, id, decision.Result, decision.FinalDay, decision.FinalTime, decision.Note, decision.DecidedBy, decision.DecidedAt)
	if err != nil {
		if appErrors.IsInvalidText(err) {
			return ErrSubmissionDecided
		}
		return fmt.Errorf("decide show submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decide show submission: %w", err)
	}
	if affected == 0 {
		return ErrSubmissionDecided
	}
	return nil
}
