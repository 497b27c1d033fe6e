package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	"github.com/noah-isme/radio-schedule-api/internal/repository"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

type showSubmissionRepository interface {
	Create(ctx context.Context, submission *models.ShowSubmission) error
	FindByID(ctx context.Context, id string) (*models.ShowSubmission, error)
	List(ctx context.Context, filter models.ShowSubmissionFilter) ([]models.ShowSubmission, int, error)
	Decide(ctx context.Context, exec sqlx.ExtContext, id string, decision models.SubmissionDecision) error
}

type recurringScheduleCreator interface {
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.RecurringSchedule) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SubmissionServiceDeps groups the collaborators of SubmissionService.
type SubmissionServiceDeps struct {
	Submissions showSubmissionRepository
	Recurring   recurringScheduleCreator
	Checker     *ConflictChecker
	Tx          txProvider
	Catalog     *SlotCatalog
	Locks       *SlotLockService
	Cache       *CacheService
	Events      *EventService
	Audit       auditWriter
	Metrics     *MetricsService
	// Location decides which calendar week "now" falls in when no week is given.
	Location *time.Location
}

// SubmissionService handles show submission intake and the accept/reject workflow.
type SubmissionService struct {
	repo      showSubmissionRepository
	recurring recurringScheduleCreator
	checker   *ConflictChecker
	tx        txProvider
	catalog   *SlotCatalog
	locks     *SlotLockService
	cache     *CacheService
	events    *EventService
	audit     auditWriter
	metrics   *MetricsService
	location  *time.Location
	now       func() time.Time
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs the service.
func NewSubmissionService(deps SubmissionServiceDeps, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Catalog == nil {
		deps.Catalog = NewSlotCatalog(nil)
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	registerScheduleValidations(validate)
	return &SubmissionService{
		repo:      deps.Submissions,
		recurring: deps.Recurring,
		checker:   deps.Checker,
		tx:        deps.Tx,
		catalog:   deps.Catalog,
		locks:     deps.Locks,
		cache:     deps.Cache,
		events:    deps.Events,
		audit:     deps.Audit,
		metrics:   deps.Metrics,
		location:  deps.Location,
		now:       time.Now,
		validator: validate,
		logger:    logger,
	}
}

// Create stores a new pending submission for a bookable slot.
func (s *SubmissionService) Create(ctx context.Context, req models.CreateShowSubmissionRequest) (*models.ShowSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	day, _ := models.ParseWeekday(req.PreferredDay)
	department := strings.TrimSpace(req.Department)
	if err := s.catalog.ValidateDepartment(department); err != nil {
		return nil, err
	}
	if !s.catalog.Contains(department, day, req.PreferredTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %s is not a bookable slot", day, req.PreferredTime))
	}

	submission := &models.ShowSubmission{
		ShowTitle:      strings.TrimSpace(req.ShowTitle),
		ApplicantName:  strings.TrimSpace(req.ApplicantName),
		ApplicantEmail: strings.ToLower(strings.TrimSpace(req.ApplicantEmail)),
		Organization:   strings.TrimSpace(req.Organization),
		Description:    strings.TrimSpace(req.Description),
		PreferredDay:   day,
		PreferredTime:  req.PreferredTime,
		Department:     department,
		Year:           req.Year,
		Result:         models.SubmissionPending,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, appErrors.Storage(err, "failed to create submission")
	}
	_ = s.cache.InvalidateSchedule(ctx, submission.Department, submission.Year)
	s.logger.Info("show submission received",
		zap.String("submission_id", submission.ID),
		zap.String("department", submission.Department),
		zap.String("day", string(day)),
		zap.String("time", submission.PreferredTime),
	)
	return submission, nil
}

// List returns submissions with pagination metadata.
func (s *SubmissionService) List(ctx context.Context, filter models.ShowSubmissionFilter) ([]models.ShowSubmission, *models.Pagination, error) {
	if filter.Result != "" && filter.Result != models.SubmissionPending && !filter.Result.Final() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown result %q", filter.Result))
	}
	submissions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list submissions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return submissions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single submission.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.ShowSubmission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Storage(err, "failed to load submission")
	}
	return submission, nil
}

// Validate runs the acceptance checks for a candidate slot without writing anything.
func (s *SubmissionService) Validate(ctx context.Context, id string, req models.AcceptSubmissionRequest) (*models.AcceptanceCheck, error) {
	submission, candidate, err := s.prepareAcceptance(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.checker.Check(ctx, candidate); err != nil {
		s.recordConflict(err)
		return nil, err
	}
	return &models.AcceptanceCheck{
		SubmissionID: submission.ID,
		Day:          candidate.Day,
		TimeSlot:     candidate.TimeSlot,
		Date:         DateForDay(candidate.WeekStart, candidate.Day),
		Available:    true,
	}, nil
}

// Accept promotes a pending submission into a recurring booking. The insert and
// the status change commit together or not at all.
func (s *SubmissionService) Accept(ctx context.Context, actor models.Actor, id string, req models.AcceptSubmissionRequest) (result *models.AcceptanceResult, err error) {
	submission, candidate, err := s.prepareAcceptance(ctx, id, req)
	if err != nil {
		return nil, err
	}

	lease, acquired, err := s.locks.Acquire(ctx, SlotLockKey(candidate.Department, candidate.Year, candidate.Day, candidate.TimeSlot))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to lock slot")
	}
	if !acquired {
		err = slotConflictError(models.SlotConflict{Kind: models.ConflictLocked, Day: candidate.Day, TimeSlot: candidate.TimeSlot})
		s.recordConflict(err)
		return nil, err
	}
	defer s.locks.Release(ctx, lease)

	if err = s.checker.Check(ctx, candidate); err != nil {
		s.recordConflict(err)
		return nil, err
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	submissionID := submission.ID
	recurring := &models.RecurringSchedule{
		Day:          candidate.Day,
		TimeSlot:     candidate.TimeSlot,
		Department:   submission.Department,
		Year:         submission.Year,
		Subject:      submission.ShowTitle,
		RoomNum:      strings.TrimSpace(req.RoomNum),
		BookedBy:     submission.ApplicantName,
		SubmissionID: &submissionID,
	}
	if err = s.recurring.Create(ctx, tx, recurring); err != nil {
		if appErrors.IsUniqueViolation(err) {
			_ = tx.Rollback()
			err = s.checker.OccupiedConflict(ctx, candidate)
			s.recordConflict(err)
			return nil, err
		}
		err = appErrors.Storage(err, "failed to create recurring schedule")
		return nil, err
	}

	decidedAt := s.now().UTC()
	decision := models.SubmissionDecision{
		Result:    models.SubmissionAccepted,
		FinalDay:  &candidate.Day,
		FinalTime: &candidate.TimeSlot,
		DecidedAt: decidedAt,
	}
	if actor.UserID != "" {
		decision.DecidedBy = &actor.UserID
	}
	if err = s.repo.Decide(ctx, tx, submission.ID, decision); err != nil {
		if errors.Is(err, repository.ErrSubmissionDecided) {
			err = appErrors.Clone(appErrors.ErrFinalized, "submission was decided concurrently")
			return nil, err
		}
		err = appErrors.Storage(err, "failed to update submission")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Storage(err, "failed to commit acceptance")
		return nil, err
	}

	submission.Result = models.SubmissionAccepted
	submission.FinalDay = decision.FinalDay
	submission.FinalTime = decision.FinalTime
	submission.DecidedBy = decision.DecidedBy
	submission.DecidedAt = &decidedAt

	s.afterDecision(ctx, actor, submission, models.EventSubmissionAccepted, models.AuditActionSubmissionAccept, recurring)
	s.logger.Info("show submission accepted",
		zap.String("submission_id", submission.ID),
		zap.String("recurring_id", recurring.ID),
		zap.String("actor", actor.UserID),
	)
	return &models.AcceptanceResult{Submission: *submission, Recurring: *recurring}, nil
}

// Reject declines a pending submission.
func (s *SubmissionService) Reject(ctx context.Context, actor models.Actor, id string, req models.RejectSubmissionRequest) (*models.ShowSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reject payload")
	}
	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Result.Final() {
		return nil, appErrors.Clone(appErrors.ErrFinalized, fmt.Sprintf("submission already %s", submission.Result))
	}

	decidedAt := s.now().UTC()
	decision := models.SubmissionDecision{Result: models.SubmissionRejected, DecidedAt: decidedAt}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		decision.Note = &reason
	}
	if actor.UserID != "" {
		decision.DecidedBy = &actor.UserID
	}
	if err := s.repo.Decide(ctx, nil, submission.ID, decision); err != nil {
		if errors.Is(err, repository.ErrSubmissionDecided) {
			return nil, appErrors.Clone(appErrors.ErrFinalized, "submission was decided concurrently")
		}
		return nil, appErrors.Storage(err, "failed to reject submission")
	}

	submission.Result = models.SubmissionRejected
	submission.DecisionNote = decision.Note
	submission.DecidedBy = decision.DecidedBy
	submission.DecidedAt = &decidedAt

	s.afterDecision(ctx, actor, submission, models.EventSubmissionRejected, models.AuditActionSubmissionReject, nil)
	return submission, nil
}

func (s *SubmissionService) prepareAcceptance(ctx context.Context, id string, req models.AcceptSubmissionRequest) (*models.ShowSubmission, SlotCandidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, SlotCandidate{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid acceptance payload")
	}
	day, _ := models.ParseWeekday(req.FinalDay)

	weekStart := WeekStartOf(s.now().In(s.location))
	if req.WeekStart != "" {
		parsed, err := ParseWeekStart(req.WeekStart)
		if err != nil {
			return nil, SlotCandidate{}, err
		}
		weekStart = parsed
	}

	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, SlotCandidate{}, err
	}
	if submission.Result.Final() {
		return nil, SlotCandidate{}, appErrors.Clone(appErrors.ErrFinalized, fmt.Sprintf("submission already %s", submission.Result))
	}

	return submission, SlotCandidate{
		Department:          submission.Department,
		Year:                submission.Year,
		Day:                 day,
		TimeSlot:            strings.TrimSpace(req.FinalTime),
		WeekStart:           weekStart,
		ExcludeSubmissionID: submission.ID,
	}, nil
}

func (s *SubmissionService) afterDecision(ctx context.Context, actor models.Actor, submission *models.ShowSubmission, routingKey, action string, recurring *models.RecurringSchedule) {
	_ = s.cache.InvalidateSchedule(ctx, submission.Department, submission.Year)
	s.metrics.RecordDecision(string(submission.Result))

	payload := map[string]interface{}{"submission": submission}
	if recurring != nil {
		payload["recurring_schedule"] = recurring
	}
	s.events.Emit(routingKey, submission.Department, submission.Year, actor, payload)
	recordAudit(ctx, s.audit, s.logger, actor, auditEntry{
		action:     action,
		resource:   "show_submissions",
		resourceID: submission.ID,
		oldValues:  map[string]string{"result": string(models.SubmissionPending)},
		newValues:  payload,
	})
}

func (s *SubmissionService) recordConflict(err error) {
	if kind, ok := conflictKind(err); ok {
		s.metrics.RecordSlotConflict(string(kind))
	}
}
