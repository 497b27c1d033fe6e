package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
)

type lockStore interface {
	TrySetNX(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, token string) (bool, error)
}

// SlotLease is a held advisory lock.
type SlotLease struct {
	Key   string
	Token string
}

// SlotLockService hands out short-lived Redis advisory locks keyed by slot.
// Without a store every acquisition succeeds and storage constraints are the only guard.
type SlotLockService struct {
	store  lockStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewSlotLockService constructs the locker. store may be nil.
func NewSlotLockService(store lockStore, ttl time.Duration, logger *zap.Logger) *SlotLockService {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotLockService{store: store, ttl: ttl, logger: logger}
}

// SlotLockKey names the lock guarding one weekly slot.
func SlotLockKey(department, year string, day models.Weekday, timeSlot string) string {
	return fmt.Sprintf("slotlock:%s:%s:%s:%s", cacheSegment(department), cacheSegment(year), day, timeSlot)
}

// Acquire tries to take key. It returns false without error when another holder owns it.
func (s *SlotLockService) Acquire(ctx context.Context, key string) (*SlotLease, bool, error) {
	lease := &SlotLease{Key: key, Token: uuid.NewString()}
	if s == nil || s.store == nil {
		return lease, true, nil
	}
	ok, err := s.store.TrySetNX(ctx, key, lease.Token, s.ttl)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.logger.Info("slot lock busy", zap.String("key", key))
		return nil, false, nil
	}
	return lease, true, nil
}

// Release frees the lease if it is still owned. Errors are logged; the TTL bounds a leaked lock.
func (s *SlotLockService) Release(ctx context.Context, lease *SlotLease) {
	if s == nil || s.store == nil || lease == nil {
		return
	}
	released, err := s.store.ReleaseIfOwner(context.WithoutCancel(ctx), lease.Key, lease.Token)
	if err != nil {
		s.logger.Warn("slot lock release failed", zap.String("key", lease.Key), zap.Error(err))
		return
	}
	if !released {
		s.logger.Warn("slot lock expired before release", zap.String("key", lease.Key))
	}
}
