package dto

import (
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// DocumentInput describes a file attached when the application is created.
type DocumentInput struct {
	Category  string  `json:"category" validate:"required,max=100"`
	FileName  string  `json:"fileName" validate:"required,max=255"`
	FileURL   *string `json:"fileUrl" validate:"omitempty,url"`
	MimeType  *string `json:"mimeType" validate:"omitempty,max=100"`
	SizeBytes int64   `json:"sizeBytes" validate:"gte=0"`
}

// CreateApplicationRequest opens a new draft application.
type CreateApplicationRequest struct {
	Type          models.ApplicationType `json:"applicationType" validate:"required"`
	InstitutionID string                 `json:"institutionId" validate:"omitempty,max=64"`
	CourseName    *string                `json:"courseName" validate:"omitempty,max=255"`
	CourseIntake  *int                   `json:"courseIntake" validate:"omitempty,gt=0"`
	Documents     []DocumentInput        `json:"documents" validate:"dive"`
}

// AssignEvaluatorRequest binds an evaluator to an application.
type AssignEvaluatorRequest struct {
	EvaluatorID string                    `json:"evaluatorId" validate:"required"`
	Priority    models.AssignmentPriority `json:"priority"`
	Deadline    *time.Time                `json:"deadline"`
}

// RecordEvaluationRequest carries an evaluator's verdict.
type RecordEvaluationRequest struct {
	Score          *float64 `json:"score" validate:"required"`
	Recommendation string   `json:"recommendation" validate:"required"`
	Comments       string   `json:"comments" validate:"max=5000"`
	SiteVisitNotes *string  `json:"siteVisitNotes" validate:"omitempty,max=5000"`
}

// ReviewDocumentRequest marks a pending document as approved or rejected.
type ReviewDocumentRequest struct {
	Status models.DocumentStatus `json:"status" validate:"required"`
}

// SetStatusRequest is the administrative override payload.
type SetStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
	Reason string                   `json:"reason" validate:"required,max=1000"`
}

// AdvanceReviewRequest moves an application into scrutiny or document verification.
type AdvanceReviewRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
}

// AdvanceStageRequest sets a named timeline stage's status.
type AdvanceStageRequest struct {
	Title  string             `json:"title" validate:"required"`
	Status models.StageStatus `json:"status" validate:"required"`
}

// ApplicationQuery mirrors supported listing filters.
type ApplicationQuery struct {
	Status   []models.ApplicationStatus
	Type     models.ApplicationType
	Page     int
	PageSize int
}

// ApplicationDetail bundles an application with its timeline and documents.
type ApplicationDetail struct {
	Application models.Application           `json:"application"`
	Stages      []models.TimelineStage       `json:"stages"`
	Documents   []models.Document            `json:"documents"`
	Assignments []models.EvaluatorAssignment `json:"assignments"`
	Evaluations []models.Evaluation          `json:"evaluations"`
}

// EvaluationResult is returned after an evaluation is recorded.
type EvaluationResult struct {
	Evaluation  models.Evaluation          `json:"evaluation"`
	Assignment  models.EvaluatorAssignment `json:"assignment"`
	Application models.Application         `json:"application"`
}

// AssignmentResult is returned after an evaluator is assigned.
type AssignmentResult struct {
	Assignment  models.EvaluatorAssignment `json:"assignment"`
	Application models.Application         `json:"application"`
}
