package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/middleware"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, actor models.Actor) (*dto.DashboardStats, bool, error)
	Tracker(ctx context.Context, actor models.Actor) (*dto.TrackerView, error)
}

type trackerExporter interface {
	ExportTracker(ctx context.Context, actor models.Actor, format dto.ExportFormat) (*dto.ExportResult, error)
}

// DashboardHandler wires the read-side views to HTTP endpoints.
type DashboardHandler struct {
	service  dashboardService
	exporter trackerExporter
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, exporter trackerExporter) *DashboardHandler {
	return &DashboardHandler{service: service, exporter: exporter}
}

// Stats godoc
// @Summary Role-scoped dashboard statistics and alerts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	stats, cacheHit, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, stats, nil, meta)
}

// Tracker godoc
// @Summary Application tracker with timelines and review progress
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tracker [get]
func (h *DashboardHandler) Tracker(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.Tracker(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Export godoc
// @Summary Download the tracker as CSV or PDF
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /tracker/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	result, err := h.exporter.ExportTracker(c.Request.Context(), actor, dto.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.FileName, result.ContentType, result.Data)
}
