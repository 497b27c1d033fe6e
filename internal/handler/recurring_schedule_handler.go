package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
	"github.com/noah-isme/radio-schedule-api/pkg/response"
)

type recurringScheduleService interface {
	List(ctx context.Context, filter models.RecurringScheduleFilter) ([]models.RecurringSchedule, error)
	Create(ctx context.Context, actor models.Actor, req models.RecurringScheduleRequest) (*models.RecurringSchedule, error)
	Update(ctx context.Context, actor models.Actor, id string, req models.RecurringScheduleRequest) (*models.RecurringSchedule, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// RecurringScheduleHandler exposes weekly booking administration.
type RecurringScheduleHandler struct {
	service recurringScheduleService
}

// NewRecurringScheduleHandler constructs the handler.
func NewRecurringScheduleHandler(svc recurringScheduleService) *RecurringScheduleHandler {
	return &RecurringScheduleHandler{service: svc}
}

// List godoc
// @Summary List recurring schedules
// @Tags Recurring Schedules
// @Produce json
// @Security BearerAuth
// @Param department query string true "Department"
// @Param year query string true "Academic year"
// @Param day query string false "Weekday"
// @Success 200 {object} response.Envelope
// @Router /recurring-schedules [get]
func (h *RecurringScheduleHandler) List(c *gin.Context) {
	filter := models.RecurringScheduleFilter{
		Department: queryFirst(c, "department"),
		Year:       queryFirst(c, "year"),
	}
	if raw := queryFirst(c, "day"); raw != "" {
		day, err := models.ParseWeekday(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day"))
			return
		}
		filter.Day = day
	}
	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Create godoc
// @Summary Book a weekly slot
// @Tags Recurring Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.RecurringScheduleRequest true "Recurring schedule"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /recurring-schedules [post]
func (h *RecurringScheduleHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req models.RecurringScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recurring schedule payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Edit a weekly booking
// @Tags Recurring Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recurring schedule ID"
// @Param payload body models.RecurringScheduleRequest true "Recurring schedule"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /recurring-schedules/{id} [put]
func (h *RecurringScheduleHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req models.RecurringScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recurring schedule payload"))
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Remove a weekly booking
// @Tags Recurring Schedules
// @Security BearerAuth
// @Param id path string true "Recurring schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /recurring-schedules/{id} [delete]
func (h *RecurringScheduleHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
