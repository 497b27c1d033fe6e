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

var recurringRowColumns = []string{"id", "day", "time_slot", "department", "year", "subject", "room_num", "booked_by", "submission_id", "created_at", "updated_at"}

func TestRecurringScheduleRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(recurringRowColumns).
		AddRow("rec-1", "Friday", "12:01-12:55", "News", "2024", "FM MIX", "B12", "dj@station.fm", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM recurring_schedules WHERE department = $1 AND year = $2 ORDER BY day, time_slot")).
		WithArgs("News", "2024").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.RecurringScheduleFilter{Department: "News", Year: "2024"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.Friday, list[0].Day)
	assert.Equal(t, "FM MIX", list[0].Subject)
	assert.Nil(t, list[0].SubmissionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryListByDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE department = $1 AND year = $2 AND day = $3")).
		WithArgs("News", "2024", "Monday").
		WillReturnRows(sqlmock.NewRows(recurringRowColumns))

	list, err := repo.List(context.Background(), models.RecurringScheduleFilter{Department: "News", Year: "2024", Day: models.Monday})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryListRetriesTransientFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db).WithReadRetries(2)

	now := time.Now()
	mock.ExpectQuery("FROM recurring_schedules").WillReturnError(&pq.Error{Code: "08006"})
	mock.ExpectQuery("FROM recurring_schedules").
		WillReturnRows(sqlmock.NewRows(recurringRowColumns).
			AddRow("rec-1", "Monday", "7:30-8:15", "News", "2024", "Morning Brew", "", "", nil, now, now))

	list, err := repo.List(context.Background(), models.RecurringScheduleFilter{Department: "News", Year: "2024"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryListDoesNotRetryPermanentFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db).WithReadRetries(2)

	mock.ExpectQuery("FROM recurring_schedules").WillReturnError(&pq.Error{Code: "42P01"})

	_, err := repo.List(context.Background(), models.RecurringScheduleFilter{Department: "News", Year: "2024"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryFindBySlotNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE department = $1 AND year = $2 AND day = $3 AND time_slot = $4 LIMIT 1")).
		WithArgs("News", "2024", "Friday", "12:01-12:55").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySlot(context.Background(), "News", "2024", models.Friday, "12:01-12:55")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db)

	submissionID := "sub-1"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recurring_schedules")).
		WithArgs(sqlmock.AnyArg(), "Friday", "12:01-12:55", "News", "2024", "FM MIX", "B12", "dj@station.fm", submissionID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	schedule := &models.RecurringSchedule{
		Day:          models.Friday,
		TimeSlot:     "12:01-12:55",
		Department:   "News",
		Year:         "2024",
		Subject:      "FM MIX",
		RoomNum:      "B12",
		BookedBy:     "dj@station.fm",
		SubmissionID: &submissionID,
	}
	require.NoError(t, repo.Create(context.Background(), tx, schedule))
	require.NoError(t, tx.Commit())
	assert.NotEmpty(t, schedule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recurring_schedules WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringScheduleRepositoryMalformedIDIsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecurringScheduleRepository(db)
	badID := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	mock.ExpectQuery(regexp.QuoteMeta("FROM recurring_schedules WHERE id = $1 LIMIT 1")).
		WithArgs("abc").
		WillReturnError(badID)
	_, err := repo.FindByID(context.Background(), "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recurring_schedules WHERE id = $1")).
		WithArgs("abc").
		WillReturnError(badID)
	err = repo.Delete(context.Background(), "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
