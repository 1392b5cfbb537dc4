package models

import "time"

// StageStatus is the progress state of a timeline stage.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageCurrent   StageStatus = "current"
	StageCompleted StageStatus = "completed"
)

// TimelineStage is one named step in an application's progress timeline.
type TimelineStage struct {
	ID            string            `db:"id" json:"id"`
	ApplicationID string            `db:"application_id" json:"applicationId"`
	Position      int               `db:"position" json:"position"`
	Title         string            `db:"title" json:"title"`
	Phase         ApplicationStatus `db:"phase" json:"phase"`
	Status        StageStatus       `db:"status" json:"status"`
	Assignee      *string           `db:"assignee" json:"assignee,omitempty"`
	CompletedAt   *time.Time        `db:"completed_at" json:"completedAt,omitempty"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`
}
