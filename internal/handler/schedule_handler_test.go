package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

type recurringServiceMock struct {
	filter    models.RecurringScheduleFilter
	createErr error
	deleted   string
}

func (m *recurringServiceMock) List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error) {
	m.filter = filter
	return []models.RecurringSchedule{{ID: "rec-1", Day: models.Friday}}, nil
}

func (m *recurringServiceMock) Create(ctx context.Context, actor models.Actor, req models.RecurringScheduleRequest) (*models.RecurringSchedule, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.RecurringSchedule{ID: "rec-new", Subject: req.Subject, BookedBy: actor.Email}, nil
}

func (m *recurringServiceMock) Update(ctx context.Context, actor models.Actor, id string, req models.RecurringScheduleRequest) (*models.RecurringSchedule, error) {
	return &models.RecurringSchedule{ID: id, Subject: req.Subject}, nil
}

func (m *recurringServiceMock) Delete(ctx context.Context, actor models.Actor, id string) error {
	m.deleted = id
	return nil
}

type overrideServiceMock struct {
	from, to string
	req      models.ScheduleOverrideRequest
}

func (m *overrideServiceMock) List(ctx context.Context, department, year, from, to string) ([]models.ScheduleOverride, error) {
	m.from, m.to = from, to
	return []models.ScheduleOverride{}, nil
}

func (m *overrideServiceMock) Upsert(ctx context.Context, actor models.Actor, req models.ScheduleOverrideRequest) (*models.ScheduleOverride, error) {
	m.req = req
	return &models.ScheduleOverride{ID: "ovr-1", Status: models.OverrideStatus(req.Status)}, nil
}

func (m *overrideServiceMock) Delete(ctx context.Context, actor models.Actor, id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "override not found")
}

func TestRecurringScheduleHandlerListParsesDay(t *testing.T) {
	svc := &recurringServiceMock{}
	handler := NewRecurringScheduleHandler(svc)
	c, w := newTestContext(t, http.MethodGet, "/recurring-schedules?department=News&year=2024&day=friday", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Friday, svc.filter.Day)
	assert.Equal(t, "News", svc.filter.Department)
}

func TestRecurringScheduleHandlerListRejectsUnknownDay(t *testing.T) {
	handler := NewRecurringScheduleHandler(&recurringServiceMock{})
	c, w := newTestContext(t, http.MethodGet, "/recurring-schedules?day=someday", nil)

	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecurringScheduleHandlerCreate(t *testing.T) {
	handler := NewRecurringScheduleHandler(&recurringServiceMock{})
	c, w := newTestContext(t, http.MethodPost, "/recurring-schedules", []byte(`{"day":"Friday","time":"12:01-12:55","department":"News","year":"2024","subject":"FM MIX"}`))
	withAdmin(c)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"booked_by":"admin@station.fm"`)
}

func TestRecurringScheduleHandlerCreateConflict(t *testing.T) {
	svc := &recurringServiceMock{createErr: appErrors.Clone(appErrors.ErrSlotConflict, "slot already booked")}
	handler := NewRecurringScheduleHandler(svc)
	c, w := newTestContext(t, http.MethodPost, "/recurring-schedules", []byte(`{"day":"Friday","time":"12:01-12:55"}`))
	withAdmin(c)

	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRecurringScheduleHandlerDelete(t *testing.T) {
	svc := &recurringServiceMock{}
	handler := NewRecurringScheduleHandler(svc)
	c, w := newTestContext(t, http.MethodDelete, "/recurring-schedules/rec-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "rec-1"}}
	withAdmin(c)

	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "rec-1", svc.deleted)
	assert.Empty(t, w.Body.String())
}

func TestScheduleOverrideHandlerUpsert(t *testing.T) {
	svc := &overrideServiceMock{}
	handler := NewScheduleOverrideHandler(svc)
	c, w := newTestContext(t, http.MethodPut, "/schedule-overrides", []byte(`{"date":"2024-09-13","time":"12:01-12:55","department":"News","year":"2024","status":"available"}`))
	withAdmin(c)

	handler.Upsert(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-09-13", svc.req.Date)
}

func TestScheduleOverrideHandlerUpsertRequiresActor(t *testing.T) {
	handler := NewScheduleOverrideHandler(&overrideServiceMock{})
	c, w := newTestContext(t, http.MethodPut, "/schedule-overrides", []byte(`{}`))

	handler.Upsert(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleOverrideHandlerDeleteNotFound(t *testing.T) {
	handler := NewScheduleOverrideHandler(&overrideServiceMock{})
	c, w := newTestContext(t, http.MethodDelete, "/schedule-overrides/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	withAdmin(c)

	handler.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
