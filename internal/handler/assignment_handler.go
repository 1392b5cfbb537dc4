package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/pkg/response"
)

type evaluationWorkflow interface {
	AssignEvaluator(ctx context.Context, actor models.Actor, id string, req dto.AssignEvaluatorRequest) (*dto.AssignmentResult, error)
	RecordEvaluation(ctx context.Context, actor models.Actor, assignmentID string, req dto.RecordEvaluationRequest) (*dto.EvaluationResult, error)
}

type assignmentService interface {
	ListForActor(ctx context.Context, actor models.Actor, openOnly bool) ([]models.EvaluatorAssignment, error)
	Metrics(assignments []models.EvaluatorAssignment) dto.AssignmentMetrics
}

// AssignmentHandler exposes evaluator assignment and evaluation endpoints.
type AssignmentHandler struct {
	workflow    evaluationWorkflow
	assignments assignmentService
}

// NewAssignmentHandler builds a new handler.
func NewAssignmentHandler(workflow evaluationWorkflow, assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{workflow: workflow, assignments: assignments}
}

// Assign godoc
// @Summary Assign an evaluator to an application
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.AssignEvaluatorRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /applications/{id}/assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AssignEvaluatorRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	result, err := h.workflow.AssignEvaluator(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List evaluator assignments
// @Tags Assignments
// @Produce json
// @Param open query bool false "Only open assignments"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.assignments.ListForActor(c.Request.Context(), actor, queryBool(c, "open"))
	if err != nil {
		response.Error(c, err)
		return
	}
	metrics := h.assignments.Metrics(items)
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"metrics": metrics})
}

// RecordEvaluation godoc
// @Summary Record an evaluation for an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.RecordEvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Router /assignments/{id}/evaluations [post]
func (h *AssignmentHandler) RecordEvaluation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RecordEvaluationRequest
	if !bindJSON(c, &req, "invalid evaluation payload") {
		return
	}
	result, err := h.workflow.RecordEvaluation(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
