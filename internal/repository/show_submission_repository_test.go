package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/radio-schedule-api/internal/models"
)

var submissionRowColumns = []string{"id", "show_title", "applicant_name", "applicant_email", "organization", "description", "preferred_day", "preferred_time", "department", "year", "result", "final_day", "final_time", "decision_note", "decided_by", "decided_at", "created_at", "updated_at"}

func TestShowSubmissionRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewShowSubmissionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(submissionRowColumns).
		AddRow("sub-1", "Campus Beats", "Ana", "ana@example.com", "Music Club", "", "Monday", "7:30-8:15", "News", "2024", "pending", nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM show_submissions WHERE department = $1 AND year = $2 AND result = 'pending' ORDER BY created_at")).
		WithArgs("News", "2024").
		WillReturnRows(rows)

	list, err := repo.ListPending(context.Background(), "News", "2024")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.Monday, list[0].PreferredDay)
	assert.Equal(t, models.SubmissionPending, list[0].Result)
	assert.Nil(t, list[0].FinalDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSubmissionRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewShowSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM show_submissions WHERE 1=1 AND department = $1 AND result = $2 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("News", "pending").
		WillReturnRows(sqlmock.NewRows(submissionRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM show_submissions WHERE 1=1 AND department = $1 AND result = $2")).
		WithArgs("News", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), models.ShowSubmissionFilter{Department: "News", Result: models.SubmissionPending})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSubmissionRepositoryDecideGuardsPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewShowSubmissionRepository(db)

	day := models.Friday
	slot := "12:01-12:55"
	decidedBy := "admin-1"
	decision := models.SubmissionDecision{
		Result:    models.SubmissionAccepted,
		FinalDay:  &day,
		FinalTime: &slot,
		DecidedBy: &decidedBy,
		DecidedAt: time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND result = 'pending'")).
		WithArgs("sub-1", "accepted", "Friday", "12:01-12:55", nil, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Decide(context.Background(), nil, "sub-1", decision))

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND result = 'pending'")).
		WithArgs("sub-1", "accepted", "Friday", "12:01-12:55", nil, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Decide(context.Background(), nil, "sub-1", decision)
	assert.ErrorIs(t, err, ErrSubmissionDecided)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSubmissionRepositoryMalformedIDIsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewShowSubmissionRepository(db)
	badID := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`}

	mock.ExpectQuery(regexp.QuoteMeta("FROM show_submissions WHERE id = $1 LIMIT 1")).
		WithArgs("not-a-uuid").
		WillReturnError(badID)
	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND result = 'pending'")).
		WillReturnError(badID)
	err = repo.Decide(context.Background(), nil, "not-a-uuid", models.SubmissionDecision{Result: models.SubmissionRejected})
	assert.ErrorIs(t, err, ErrSubmissionDecided)

	assert.NoError(t, mock.ExpectationsWereMet())
}
