package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/radio-schedule-api/internal/models"
)

type recurringRepoStub struct {
	items     []models.RecurringSchedule
	findErr   error
	createErr error
	updateErr error
	created   []models.RecurringSchedule
	createdTx []bool
	// raced is committed by a competing writer just before a write fails.
	raced *models.RecurringSchedule
}

func (s *recurringRepoStub) lose(err error) error {
	if s.raced != nil {
		s.items = append(s.items, *s.raced)
		s.raced = nil
	}
	return err
}

func (s *recurringRepoStub) List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.RecurringSchedule
	for _, item := range s.items {
		if item.Department == filter.Department && item.Year == filter.Year {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *recurringRepoStub) FindByID(ctx context.Context, id string) (*models.RecurringSchedule, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			item := s.items[i]
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *recurringRepoStub) FindBySlot(ctx context.Context, department, year string, day models.Weekday, timeSlot string) (*models.RecurringSchedule, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.items {
		item := s.items[i]
		if item.Department == department && item.Year == year && item.Day == day && item.TimeSlot == timeSlot {
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *recurringRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.RecurringSchedule) error {
	if s.createErr != nil {
		return s.lose(s.createErr)
	}
	schedule.ID = "rec-new"
	s.created = append(s.created, *schedule)
	s.createdTx = append(s.createdTx, exec != nil)
	s.items = append(s.items, *schedule)
	return nil
}

func (s *recurringRepoStub) Update(ctx context.Context, schedule *models.RecurringSchedule) error {
	if s.updateErr != nil {
		return s.lose(s.updateErr)
	}
	for i := range s.items {
		if s.items[i].ID == schedule.ID {
			s.items[i] = *schedule
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *recurringRepoStub) Delete(ctx context.Context, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type overrideRepoStub struct {
	items      []models.ScheduleOverride
	listErr    error
	upserted   []models.ScheduleOverride
	purgeCount int64
	cutoffs    []models.Date
}

func (s *overrideRepoStub) ListRange(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.ScheduleOverride
	for _, item := range s.items {
		if item.Department != filter.Department || item.Year != filter.Year {
			continue
		}
		if item.Date.Before(filter.From.Time) || item.Date.After(filter.To.Time) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *overrideRepoStub) FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			item := s.items[i]
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *overrideRepoStub) FindBySlot(ctx context.Context, department, year string, date models.Date, timeSlot string) (*models.ScheduleOverride, error) {
	for i := range s.items {
		item := s.items[i]
		if item.Department == department && item.Year == year && item.Date.Equal(date.Time) && item.TimeSlot == timeSlot {
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *overrideRepoStub) Upsert(ctx context.Context, override *models.ScheduleOverride) error {
	override.ID = "ovr-new"
	s.upserted = append(s.upserted, *override)
	return nil
}

func (s *overrideRepoStub) Delete(ctx context.Context, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *overrideRepoStub) DeleteBefore(ctx context.Context, cutoff models.Date) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.purgeCount, nil
}

type submissionRepoStub struct {
	items     []models.ShowSubmission
	decideErr error
	decisions []models.SubmissionDecision
	decidedTx []bool
	listTotal int
}

func (s *submissionRepoStub) Create(ctx context.Context, submission *models.ShowSubmission) error {
	submission.ID = "sub-new"
	s.items = append(s.items, *submission)
	return nil
}

func (s *submissionRepoStub) FindByID(ctx context.Context, id string) (*models.ShowSubmission, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			item := s.items[i]
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *submissionRepoStub) List(ctx context.Context, filter models.ShowSubmissionFilter) ([]models.ShowSubmission, int, error) {
	return s.items, s.listTotal, nil
}

func (s *submissionRepoStub) ListPending(ctx context.Context, department, year string) ([]models.ShowSubmission, error) {
	var out []models.ShowSubmission
	for _, item := range s.items {
		if item.Result == models.SubmissionPending && item.Department == department && item.Year == year {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *submissionRepoStub) ListPendingBySlot(ctx context.Context, department, year string, day models.Weekday, timeSlot string) ([]models.ShowSubmission, error) {
	pending, _ := s.ListPending(ctx, department, year)
	var out []models.ShowSubmission
	for _, item := range pending {
		if item.PreferredDay == day && item.PreferredTime == timeSlot {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *submissionRepoStub) Decide(ctx context.Context, exec sqlx.ExtContext, id string, decision models.SubmissionDecision) error {
	if s.decideErr != nil {
		return s.decideErr
	}
	s.decisions = append(s.decisions, decision)
	s.decidedTx = append(s.decidedTx, exec != nil)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Result = decision.Result
		}
	}
	return nil
}

type auditRepoStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (s *auditRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

func (s *auditRepoStub) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.logs))
	for _, log := range s.logs {
		out = append(out, log.Action)
	}
	return out
}

type lockStoreStub struct {
	mu       sync.Mutex
	held     map[string]string
	released []string
}

func (s *lockStoreStub) TrySetNX(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		s.held = map[string]string{}
	}
	if _, ok := s.held[key]; ok {
		return false, nil
	}
	s.held[key] = token
	return true, nil
}

func (s *lockStoreStub) ReleaseIfOwner(ctx context.Context, key, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[key] != token {
		return false, nil
	}
	delete(s.held, key)
	s.released = append(s.released, key)
	return true, nil
}

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	date, err := models.ParseDate(raw)
	require.NoError(t, err)
	return date
}
