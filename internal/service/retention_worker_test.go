package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
)

func TestRetentionWorkerPurgesBeforeCutoff(t *testing.T) {
	repo := &overrideRepoStub{purgeCount: 3}
	audit := &auditRepoStub{}
	locks := &lockStoreStub{}
	worker := NewRetentionWorker(repo, NewSlotLockService(locks, time.Minute, zap.NewNop()), audit, NewMetricsService(), RetentionConfig{OverrideDays: 30}, zap.NewNop())
	worker.now = func() time.Time { return time.Date(2024, 10, 6, 12, 0, 0, 0, time.UTC) }

	purged, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	require.Len(t, repo.cutoffs, 1)
	assert.Equal(t, "2024-09-06", repo.cutoffs[0].String())
	assert.Equal(t, []string{models.AuditActionOverrideRetention}, audit.actions())
	assert.Equal(t, []string{retentionLeaderKey}, locks.released)
}

func TestRetentionWorkerSkipsWithoutLeadership(t *testing.T) {
	repo := &overrideRepoStub{purgeCount: 3}
	locks := &lockStoreStub{held: map[string]string{retentionLeaderKey: "other-instance"}}
	worker := NewRetentionWorker(repo, NewSlotLockService(locks, time.Minute, zap.NewNop()), nil, nil, RetentionConfig{}, zap.NewNop())

	purged, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
	assert.Empty(t, repo.cutoffs)
}

func TestRetentionWorkerRejectsBadSpec(t *testing.T) {
	worker := NewRetentionWorker(&overrideRepoStub{}, nil, nil, nil, RetentionConfig{CronSpec: "every tuesday"}, zap.NewNop())
	assert.Error(t, worker.Start(context.Background()))

	worker = NewRetentionWorker(&overrideRepoStub{}, nil, nil, nil, RetentionConfig{CronSpec: "@hourly"}, zap.NewNop())
	require.NoError(t, worker.Start(context.Background()))
	worker.Stop()
}
