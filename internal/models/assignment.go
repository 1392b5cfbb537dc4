package models

import "time"

// AssignmentPriority ranks evaluator assignments.
type AssignmentPriority string

const (
	PriorityLow    AssignmentPriority = "low"
	PriorityMedium AssignmentPriority = "medium"
	PriorityHigh   AssignmentPriority = "high"
)

// Valid reports whether the priority is known.
func (p AssignmentPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// EvaluatorAssignment binds an evaluator to an application for review.
type EvaluatorAssignment struct {
	ID            string             `db:"id" json:"id"`
	ApplicationID string             `db:"application_id" json:"applicationId"`
	EvaluatorID   string             `db:"evaluator_id" json:"evaluatorId"`
	AssignedBy    string             `db:"assigned_by" json:"assignedBy"`
	Priority      AssignmentPriority `db:"priority" json:"priority"`
	Deadline      *time.Time         `db:"deadline" json:"deadline,omitempty"`
	CompletedAt   *time.Time         `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
}

// Open reports whether the assignment still awaits an evaluation.
func (a EvaluatorAssignment) Open() bool {
	return a.CompletedAt == nil
}

// AssignmentFilter constrains assignment listings.
type AssignmentFilter struct {
	ApplicationID  string
	ApplicationIDs []string
	EvaluatorID    string
	OpenOnly       bool
}
