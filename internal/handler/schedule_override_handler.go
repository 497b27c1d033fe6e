package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
	"github.com/noah-isme/radio-schedule-api/pkg/response"
)

type scheduleOverrideService interface {
	List(ctx context.Context, department, year, from, to string) ([]models.ScheduleOverride, error)
	Upsert(ctx context.Context, actor models.Actor, req models.ScheduleOverrideRequest) (*models.ScheduleOverride, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// ScheduleOverrideHandler exposes date-specific slot overrides.
type ScheduleOverrideHandler struct {
	service scheduleOverrideService
}

// NewScheduleOverrideHandler constructs the handler.
func NewScheduleOverrideHandler(svc scheduleOverrideService) *ScheduleOverrideHandler {
	return &ScheduleOverrideHandler{service: svc}
}

// List godoc
// @Summary List overrides in a date range
// @Tags Schedule Overrides
// @Produce json
// @Security BearerAuth
// @Param department query string true "Department"
// @Param year query string true "Academic year"
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule-overrides [get]
func (h *ScheduleOverrideHandler) List(c *gin.Context) {
	overrides, err := h.service.List(c.Request.Context(),
		queryFirst(c, "department"),
		queryFirst(c, "year"),
		queryFirst(c, "from"),
		queryFirst(c, "to"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overrides, nil)
}

// Upsert godoc
// @Summary Set the override for a date and slot
// @Description status=available frees a recurring slot for that date only; status=unavailable blocks it
// @Tags Schedule Overrides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ScheduleOverrideRequest true "Override"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule-overrides [post]
func (h *ScheduleOverrideHandler) Upsert(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req models.ScheduleOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}
	override, err := h.service.Upsert(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, override, nil)
}

// Delete godoc
// @Summary Remove an override
// @Tags Schedule Overrides
// @Security BearerAuth
// @Param id path string true "Override ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedule-overrides/{id} [delete]
func (h *ScheduleOverrideHandler) Delete(c *gin.Context) {
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
