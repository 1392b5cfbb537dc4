package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/pkg/response"
)

type documentService interface {
	Review(ctx context.Context, actor models.Actor, documentID string, req dto.ReviewDocumentRequest) (*models.Document, error)
	Progress(ctx context.Context, actor models.Actor, applicationID string) (*models.DocumentProgress, error)
}

// DocumentHandler exposes the document ledger.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler builds a new handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Review godoc
// @Summary Approve or reject a pending document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ReviewDocumentRequest true "Review verdict"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/review [post]
func (h *DocumentHandler) Review(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ReviewDocumentRequest
	if !bindJSON(c, &req, "invalid review payload") {
		return
	}
	doc, err := h.service.Review(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Progress godoc
// @Summary Document verification progress of an application
// @Tags Documents
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/documents/progress [get]
func (h *DocumentHandler) Progress(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	progress, err := h.service.Progress(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}
