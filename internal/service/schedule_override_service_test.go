package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

func newOverrideFixture() (*ScheduleOverrideService, *overrideRepoStub, *auditRepoStub) {
	repo := &overrideRepoStub{}
	audit := &auditRepoStub{}
	svc := NewScheduleOverrideService(repo, NewSlotCatalog(nil), nil, nil, audit, validator.New(), zap.NewNop())
	return svc, repo, audit
}

func TestScheduleOverrideServiceUpsertFreesWeek(t *testing.T) {
	svc, repo, audit := newOverrideFixture()

	override, err := svc.Upsert(context.Background(), adminActor, models.ScheduleOverrideRequest{
		Date: "2024-09-06", TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: "available",
	})
	require.NoError(t, err)
	assert.Equal(t, "ovr-new", override.ID)
	assert.Equal(t, models.OverrideAvailable, override.Status)
	assert.Empty(t, override.BookedBy)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "2024-09-06", repo.upserted[0].Date.String())
	assert.Equal(t, []string{models.AuditActionOverrideUpsert}, audit.actions())
}

func TestScheduleOverrideServiceUpsertDefaultsOwner(t *testing.T) {
	svc, _, _ := newOverrideFixture()

	override, err := svc.Upsert(context.Background(), adminActor, models.ScheduleOverrideRequest{
		Date: "2024-09-10", TimeSlot: "7:30-8:15", Department: "News", Year: "2024", Status: "unavailable", Subject: "Assembly",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@station.fm", override.BookedBy)
}

func TestScheduleOverrideServiceUpsertRejectsSlotNotOnThatDay(t *testing.T) {
	svc, repo, _ := newOverrideFixture()

	_, err := svc.Upsert(context.Background(), adminActor, models.ScheduleOverrideRequest{
		Date: "2024-09-09", TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: "available",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Upsert(context.Background(), adminActor, models.ScheduleOverrideRequest{
		Date: "2024-09-06", TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: "maybe",
	})
	require.Error(t, err)
	assert.Empty(t, repo.upserted)
}

func TestScheduleOverrideServiceList(t *testing.T) {
	svc, repo, _ := newOverrideFixture()
	repo.items = []models.ScheduleOverride{
		{ID: "ovr-1", Date: mustDate(t, "2024-09-06"), TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: models.OverrideAvailable},
		{ID: "ovr-2", Date: mustDate(t, "2024-10-06"), TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: models.OverrideAvailable},
	}

	items, err := svc.List(context.Background(), "News", "2024", "2024-09-01", "2024-09-30")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ovr-1", items[0].ID)

	_, err = svc.List(context.Background(), "News", "2024", "2024-09-30", "2024-09-01")
	assert.Error(t, err)
	_, err = svc.List(context.Background(), "News", "2024", "2023-01-01", "2024-09-01")
	assert.Error(t, err)
}

func TestScheduleOverrideServiceDelete(t *testing.T) {
	svc, repo, audit := newOverrideFixture()
	repo.items = []models.ScheduleOverride{
		{ID: "ovr-1", Date: mustDate(t, "2024-09-06"), TimeSlot: FridaySlot, Department: "News", Year: "2024", Status: models.OverrideAvailable},
	}

	require.NoError(t, svc.Delete(context.Background(), adminActor, "ovr-1"))
	assert.Empty(t, repo.items)
	assert.Equal(t, []string{models.AuditActionOverrideDelete}, audit.actions())

	err := svc.Delete(context.Background(), adminActor, "ovr-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
