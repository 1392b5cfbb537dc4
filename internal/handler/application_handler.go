package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/pkg/response"
)

type applicationService interface {
	Create(ctx context.Context, actor models.Actor, req dto.CreateApplicationRequest) (*dto.ApplicationDetail, error)
	Get(ctx context.Context, actor models.Actor, id string) (*dto.ApplicationDetail, error)
	GetByNumber(ctx context.Context, actor models.Actor, number string) (*dto.ApplicationDetail, error)
	List(ctx context.Context, actor models.Actor, query dto.ApplicationQuery) ([]models.Application, *models.Pagination, error)
	Submit(ctx context.Context, actor models.Actor, id string) (*models.Application, error)
	AdvanceReview(ctx context.Context, actor models.Actor, id string, req dto.AdvanceReviewRequest) (*models.Application, error)
	SetStatus(ctx context.Context, actor models.Actor, id string, req dto.SetStatusRequest) (*models.Application, error)
	AdvanceStage(ctx context.Context, actor models.Actor, id string, req dto.AdvanceStageRequest) ([]models.TimelineStage, error)
	History(ctx context.Context, actor models.Actor, id string) ([]models.StatusChange, error)
}

// ApplicationHandler exposes the application lifecycle endpoints.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler builds a new handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Create godoc
// @Summary Create a draft application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateApplicationRequest
	if !bindJSON(c, &req, "invalid application payload") {
		return
	}
	detail, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List visible applications, or look one up by number
// @Tags Applications
// @Produce json
// @Param status query string false "Status filter, comma separated"
// @Param applicationType query string false "Application type"
// @Param number query string false "Application number"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if number := strings.TrimSpace(c.Query("number")); number != "" {
		detail, err := h.service.GetByNumber(c.Request.Context(), actor, number)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, detail, nil)
		return
	}

	page, err := queryInt(c, "page")
	if err != nil {
		response.Error(c, err)
		return
	}
	size, err := queryInt(c, "pageSize")
	if err != nil {
		response.Error(c, err)
		return
	}
	query := dto.ApplicationQuery{
		Type:     models.ApplicationType(strings.TrimSpace(c.Query("applicationType"))),
		Page:     page,
		PageSize: size,
	}
	for _, status := range queryList(c, "status") {
		query.Status = append(query.Status, models.ApplicationStatus(status))
	}

	apps, pagination, err := h.service.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Get godoc
// @Summary Application detail with timeline, documents and evaluations
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Submit godoc
// @Summary Submit a draft application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	app, err := h.service.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Advance godoc
// @Summary Move a submitted application into scrutiny or document verification
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AdvanceReviewRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/advance [post]
func (h *ApplicationHandler) Advance(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AdvanceReviewRequest
	if !bindJSON(c, &req, "invalid advance payload") {
		return
	}
	app, err := h.service.AdvanceReview(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// SetStatus godoc
// @Summary Override an application's status
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.SetStatusRequest true "Status override"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/status [post]
func (h *ApplicationHandler) SetStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.SetStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	app, err := h.service.SetStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// AdvanceStage godoc
// @Summary Set a timeline stage's status
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AdvanceStageRequest true "Stage update"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/stages/advance [post]
func (h *ApplicationHandler) AdvanceStage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AdvanceStageRequest
	if !bindJSON(c, &req, "invalid stage payload") {
		return
	}
	stages, err := h.service.AdvanceStage(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stages, nil)
}

// History godoc
// @Summary Status change audit trail
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/history [get]
func (h *ApplicationHandler) History(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	changes, err := h.service.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, changes, nil)
}
