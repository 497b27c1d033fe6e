package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/radio-schedule-api/internal/middleware"
	"github.com/noah-isme/radio-schedule-api/internal/models"
	"github.com/noah-isme/radio-schedule-api/internal/service"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
	"github.com/noah-isme/radio-schedule-api/pkg/response"
)

type availabilityService interface {
	GetWeeklyAvailability(ctx context.Context, query models.AvailabilityQuery) (*models.WeeklyAvailability, bool, error)
}

type slotCatalog interface {
	ValidateDepartment(department string) error
	Enumerate(department string) []models.SlotCatalogDay
}

type availabilityExporter interface {
	ExportWeek(ctx context.Context, query models.AvailabilityQuery, format service.ExportFormat) (*service.ExportFile, error)
}

// AvailabilityHandler serves the slot catalog and resolved weekly grids.
type AvailabilityHandler struct {
	availability availabilityService
	catalog      slotCatalog
	exporter     availabilityExporter
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(availability availabilityService, catalog slotCatalog, exporter availabilityExporter) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, catalog: catalog, exporter: exporter}
}

// Slots godoc
// @Summary List bookable slots
// @Description Returns the weekly slot grid of a department
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /slots [get]
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	department := queryFirst(c, "department", "dept")
	if err := h.catalog.ValidateDepartment(department); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.catalog.Enumerate(department), nil)
}

// Weekly godoc
// @Summary Weekly availability grid
// @Description Resolves every slot of the week into available, booked-recurring, booked-override or pending
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param weekStart query string true "Monday of the week (YYYY-MM-DD)"
// @Param department query string true "Department"
// @Param year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Weekly(c *gin.Context) {
	query, ok := bindAvailabilityQuery(c)
	if !ok {
		return
	}
	grid, cacheHit, err := h.availability.GetWeeklyAvailability(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, grid, nil, middleware.ResponseMeta(c))
}

// Export godoc
// @Summary Export weekly availability
// @Description Downloads the resolved grid as CSV, PDF or XLSX
// @Tags Availability
// @Produce octet-stream
// @Security BearerAuth
// @Param weekStart query string true "Monday of the week (YYYY-MM-DD)"
// @Param department query string true "Department"
// @Param year query string true "Academic year"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /availability/export [get]
func (h *AvailabilityHandler) Export(c *gin.Context) {
	query, ok := bindAvailabilityQuery(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportWeek(c.Request.Context(), query, service.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Content)
}

func bindAvailabilityQuery(c *gin.Context) (models.AvailabilityQuery, bool) {
	var query models.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return query, false
	}
	if query.WeekStart == "" {
		query.WeekStart = queryFirst(c, "week_start")
	}
	return query, true
}
