package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

const retentionLeaderKey = "overrides:retention:leader"

type overridePurger interface {
	DeleteBefore(ctx context.Context, cutoff models.Date) (int64, error)
}

// RetentionConfig tunes the override cleanup job.
type RetentionConfig struct {
	OverrideDays int
	CronSpec     string
	Location     *time.Location
}

// RetentionWorker periodically deletes overrides dated before the retention window.
// Only the instance holding the leader lock runs a given tick.
type RetentionWorker struct {
	repo    overridePurger
	locks   *SlotLockService
	audit   auditWriter
	metrics *MetricsService
	cfg     RetentionConfig
	logger  *zap.Logger
	now     func() time.Time

	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewRetentionWorker constructs the worker. Call Start to schedule it.
func NewRetentionWorker(repo overridePurger, locks *SlotLockService, audit auditWriter, metrics *MetricsService, cfg RetentionConfig, logger *zap.Logger) *RetentionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OverrideDays <= 0 {
		cfg.OverrideDays = 180
	}
	if cfg.CronSpec == "" {
		cfg.CronSpec = "@daily"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &RetentionWorker{repo: repo, locks: locks, audit: audit, metrics: metrics, cfg: cfg, logger: logger, now: time.Now}
}

// Start registers the cron entry and begins the scheduler.
func (w *RetentionWorker) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithLocation(w.cfg.Location))
	if _, err := c.AddFunc(w.cfg.CronSpec, func() {
		if _, err := w.RunOnce(runCtx); err != nil {
			w.logger.Warn("override retention run failed", zap.Error(err))
		}
	}); err != nil {
		cancel()
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid retention cron spec")
	}
	c.Start()
	w.cron = c
	w.cancel = cancel
	w.logger.Info("override retention scheduled", zap.String("spec", w.cfg.CronSpec), zap.Int("days", w.cfg.OverrideDays))
	return nil
}

// Stop halts scheduling and waits for a running purge to finish.
func (w *RetentionWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// Cutoff returns the earliest date that is kept.
func (w *RetentionWorker) Cutoff() models.Date {
	return models.NewDate(w.now().In(w.cfg.Location)).AddDays(-w.cfg.OverrideDays)
}

// RunOnce purges old overrides if this instance wins the leader lock.
func (w *RetentionWorker) RunOnce(ctx context.Context) (int64, error) {
	lease, acquired, err := w.locks.Acquire(ctx, retentionLeaderKey)
	if err != nil {
		return 0, appErrors.Storage(err, "failed to acquire retention lock")
	}
	if !acquired {
		w.logger.Debug("override retention skipped; another instance holds the lock")
		return 0, nil
	}
	defer w.locks.Release(ctx, lease)

	cutoff := w.Cutoff()
	purged, err := w.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Storage(err, "failed to purge overrides")
	}
	w.metrics.AddOverridesPurged(purged)
	if purged > 0 {
		recordAudit(ctx, w.audit, w.logger, models.Actor{}, auditEntry{
			action:    models.AuditActionOverrideRetention,
			resource:  "schedule_overrides",
			newValues: map[string]interface{}{"cutoff": cutoff.String(), "deleted": purged},
		})
	}
	w.logger.Info("override retention completed", zap.String("cutoff", cutoff.String()), zap.Int64("deleted", purged))
	return purged, nil
}
