package models

import "time"

// WorkflowEventType names post-commit workflow notifications.
type WorkflowEventType string

const (
	EventApplicationCreated WorkflowEventType = "application.created"
	EventApplicationStatus  WorkflowEventType = "application.status_changed"
	EventEvaluatorAssigned  WorkflowEventType = "assignment.created"
	EventEvaluationRecorded WorkflowEventType = "evaluation.recorded"
	EventDocumentReviewed   WorkflowEventType = "document.reviewed"
	EventTimelineStageMoved WorkflowEventType = "timeline.stage_advanced"
)

// WorkflowEvent describes a committed change to an application.
type WorkflowEvent struct {
	Type          WorkflowEventType `json:"type"`
	ApplicationID string            `json:"applicationId"`
	InstitutionID string            `json:"institutionId"`
	Status        ApplicationStatus `json:"status"`
	ActorID       string            `json:"actorId"`
	OccurredAt    time.Time         `json:"occurredAt"`
}
