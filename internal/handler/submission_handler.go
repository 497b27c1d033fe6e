package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
	"github.com/noah-isme/radio-schedule-api/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, req models.CreateShowSubmissionRequest) (*models.ShowSubmission, error)
	List(ctx context.Context, filter models.ShowSubmissionFilter) ([]models.ShowSubmission, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ShowSubmission, error)
	Validate(ctx context.Context, id string, req models.AcceptSubmissionRequest) (*models.AcceptanceCheck, error)
	Accept(ctx context.Context, actor models.Actor, id string, req models.AcceptSubmissionRequest) (*models.AcceptanceResult, error)
	Reject(ctx context.Context, actor models.Actor, id string, req models.RejectSubmissionRequest) (*models.ShowSubmission, error)
}

// SubmissionHandler exposes show submission intake and review.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(svc submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// Create godoc
// @Summary Submit a show
// @Description Public intake; the submission stays pending until reviewed
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body models.CreateShowSubmissionRequest true "Submission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req models.CreateShowSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	submission, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// List godoc
// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param year query string false "Academic year"
// @Param result query string false "pending, accepted or rejected"
// @Param search query string false "Title or applicant"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	filter := models.ShowSubmissionFilter{
		Department: queryFirst(c, "department"),
		Year:       queryFirst(c, "year"),
		Result:     models.SubmissionResult(queryFirst(c, "result", "status")),
		Search:     queryFirst(c, "search", "q"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}
	submissions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, pagination)
}

// Get godoc
// @Summary Get a submission
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Validate godoc
// @Summary Dry-run an acceptance
// @Description Checks whether the chosen slot could take the submission without writing anything
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param payload body models.AcceptSubmissionRequest true "Final slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/{id}/validate [post]
func (h *SubmissionHandler) Validate(c *gin.Context) {
	var req models.AcceptSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid acceptance payload"))
		return
	}
	check, err := h.service.Validate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check, nil)
}

// Accept godoc
// @Summary Accept a submission
// @Description Promotes the submission into a recurring booking in one transaction
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param payload body models.AcceptSubmissionRequest true "Final slot"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/{id}/accept [post]
func (h *SubmissionHandler) Accept(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req models.AcceptSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid acceptance payload"))
		return
	}
	result, err := h.service.Accept(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param payload body models.RejectSubmissionRequest false "Reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/{id}/reject [post]
func (h *SubmissionHandler) Reject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req models.RejectSubmissionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
			return
		}
	}
	submission, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}
