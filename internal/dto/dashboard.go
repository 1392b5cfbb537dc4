package dto

import (
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// DashboardStats is the role-scoped dashboard payload.
type DashboardStats struct {
	Role              models.UserRole                  `json:"role"`
	TotalApplications int                              `json:"totalApplications"`
	ApprovalRate      float64                          `json:"approvalRate"`
	AvgProcessingDays int                              `json:"avgProcessingDays"`
	Distribution      map[models.ApplicationStatus]int `json:"distribution"`
	Assignments       AssignmentMetrics                `json:"assignments"`
	Documents         models.DocumentCounts            `json:"documents"`
	Alerts            []Alert                          `json:"alerts"`
	GeneratedAt       time.Time                        `json:"generatedAt"`
}

// AssignmentMetrics counts open assignments by deadline proximity.
type AssignmentMetrics struct {
	Open            int `json:"open"`
	Pending         int `json:"pending"`
	Upcoming        int `json:"upcoming"`
	NearingDeadline int `json:"nearingDeadline"`
	Overdue         int `json:"overdue"`
	Completed       int `json:"completed"`
}

// AlertKind names a dashboard alert category.
type AlertKind string

const (
	AlertUnassignedEvaluation AlertKind = "unassigned_evaluation"
	AlertNearingDeadline      AlertKind = "nearing_deadline"
	AlertAwaitingReview       AlertKind = "awaiting_review"
)

// Alert is a stateless threshold-triggered notice.
type Alert struct {
	Kind              AlertKind  `json:"kind"`
	ApplicationID     string     `json:"applicationId"`
	ApplicationNumber string     `json:"applicationNumber"`
	AssignmentID      string     `json:"assignmentId,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	Message           string     `json:"message"`
}

// TrackerEntry is one row of the application tracker view.
type TrackerEntry struct {
	ApplicationID        string                   `json:"applicationId"`
	ApplicationNumber    string                   `json:"applicationNumber"`
	Type                 models.ApplicationType   `json:"applicationType"`
	Status               models.ApplicationStatus `json:"status"`
	InstitutionID        string                   `json:"institutionId"`
	SubmittedAt          *time.Time               `json:"submittedAt,omitempty"`
	UpdatedAt            time.Time                `json:"updatedAt"`
	CurrentStage         string                   `json:"currentStage"`
	Stages               []models.TimelineStage   `json:"stages"`
	VerificationProgress int                      `json:"verificationProgress"`
	Documents            models.DocumentCounts    `json:"documents"`
	LatestScore          *float64                 `json:"latestScore,omitempty"`
	LatestRecommendation models.Recommendation    `json:"latestRecommendation,omitempty"`
}

// TrackerView lists the caller's visible applications.
type TrackerView struct {
	Entries     []TrackerEntry `json:"entries"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// ExportFormat selects the tracker export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered export file.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}
