package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

const (
	minScore = 0
	maxScore = 100
)

// EvaluationInput is a validated evaluation request.
type EvaluationInput struct {
	Score          float64
	Recommendation models.Recommendation
	Comments       string
	SiteVisitNotes *string
}

// EvaluationOutcome reports what recording an evaluation changed.
type EvaluationOutcome struct {
	Evaluation models.Evaluation
	Assignment models.EvaluatorAssignment
	// Latest is the most recent evaluation of the application, which
	// decides any terminal transition.
	Latest models.Evaluation
	// Completed is false when the assignment had already been completed.
	Completed bool
}

// EvaluationRecorder validates and persists evaluations.
type EvaluationRecorder struct {
	validator *validator.Validate
}

// NewEvaluationRecorder constructs the recorder.
func NewEvaluationRecorder() *EvaluationRecorder {
	return &EvaluationRecorder{validator: validator.New()}
}

// Validate normalises the request into an EvaluationInput.
func (r *EvaluationRecorder) Validate(req dto.RecordEvaluationRequest) (EvaluationInput, error) {
	if err := r.validator.Struct(req); err != nil {
		return EvaluationInput{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	score := *req.Score
	if math.IsNaN(score) || score < minScore || score > maxScore {
		return EvaluationInput{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score must be between %d and %d", minScore, maxScore))
	}
	rec, ok := models.ParseRecommendation(req.Recommendation)
	if !ok {
		return EvaluationInput{}, appErrors.Clone(appErrors.ErrValidation, "recommendation must be approve, reject or revise")
	}
	return EvaluationInput{
		Score:          score,
		Recommendation: rec,
		Comments:       strings.TrimSpace(req.Comments),
		SiteVisitNotes: trimmedPtr(req.SiteVisitNotes),
	}, nil
}

// Record stores the evaluation and completes its assignment. Must run
// inside the application's transaction.
func (r *EvaluationRecorder) Record(ctx context.Context, st repository.Stores, assignmentID string, in EvaluationInput, now time.Time) (*EvaluationOutcome, error) {
	assignment, err := st.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found", "failed to load assignment")
	}

	evaluation := models.Evaluation{
		AssignmentID:   assignment.ID,
		ApplicationID:  assignment.ApplicationID,
		EvaluatorID:    assignment.EvaluatorID,
		Score:          in.Score,
		Comments:       in.Comments,
		Recommendation: in.Recommendation,
		SiteVisitNotes: in.SiteVisitNotes,
		CreatedAt:      now,
	}
	if err := st.Evaluations.Create(ctx, &evaluation); err != nil {
		return nil, err
	}

	completed, err := completeAssignment(ctx, st.Assignments, assignment, now)
	if err != nil {
		return nil, err
	}

	all, err := st.Evaluations.ListByApplication(ctx, assignment.ApplicationID)
	if err != nil {
		return nil, err
	}
	latest, ok := LatestEvaluation(all)
	if !ok {
		latest = evaluation
	}
	return &EvaluationOutcome{
		Evaluation: evaluation,
		Assignment: *assignment,
		Latest:     latest,
		Completed:  completed,
	}, nil
}

// LatestEvaluation returns the most recent evaluation, breaking timestamp ties by ID.
func LatestEvaluation(evaluations []models.Evaluation) (models.Evaluation, bool) {
	if len(evaluations) == 0 {
		return models.Evaluation{}, false
	}
	latest := evaluations[0]
	for _, ev := range evaluations[1:] {
		if ev.CreatedAt.After(latest.CreatedAt) || (ev.CreatedAt.Equal(latest.CreatedAt) && ev.ID > latest.ID) {
			latest = ev
		}
	}
	return latest, true
}
