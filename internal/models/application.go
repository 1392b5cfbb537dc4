package models

import "time"

// ApplicationType enumerates the approval request categories.
type ApplicationType string

const (
	ApplicationTypeNewInstitution ApplicationType = "new-institution"
	ApplicationTypeIntakeIncrease ApplicationType = "intake-increase"
	ApplicationTypeNewCourse      ApplicationType = "new-course"
	ApplicationTypeEOA            ApplicationType = "eoa"
	ApplicationTypeLocationChange ApplicationType = "location-change"
)

// Valid reports whether the type is a known application category.
func (t ApplicationType) Valid() bool {
	switch t {
	case ApplicationTypeNewInstitution,
		ApplicationTypeIntakeIncrease,
		ApplicationTypeNewCourse,
		ApplicationTypeEOA,
		ApplicationTypeLocationChange:
		return true
	default:
		return false
	}
}

// RequiresCourse reports whether course name and intake must be supplied.
func (t ApplicationType) RequiresCourse() bool {
	return t == ApplicationTypeIntakeIncrease || t == ApplicationTypeNewCourse
}

// ApplicationStatus captures workflow states for approval applications.
type ApplicationStatus string

const (
	StatusDraft                ApplicationStatus = "draft"
	StatusSubmitted            ApplicationStatus = "submitted"
	StatusScrutiny             ApplicationStatus = "scrutiny"
	StatusDocumentVerification ApplicationStatus = "document_verification"
	StatusUnderEvaluation      ApplicationStatus = "under_evaluation"
	StatusApproved             ApplicationStatus = "approved"
	StatusRejected             ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every status in workflow order.
var ApplicationStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusScrutiny,
	StatusDocumentVerification,
	StatusUnderEvaluation,
	StatusApproved,
	StatusRejected,
}

var statusRank = map[ApplicationStatus]int{
	StatusDraft:                0,
	StatusSubmitted:            1,
	StatusScrutiny:             2,
	StatusDocumentVerification: 3,
	StatusUnderEvaluation:      4,
	StatusApproved:             5,
	StatusRejected:             5,
}

// Valid reports whether the status is known.
func (s ApplicationStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further guided transition is expected.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Rank returns the position of the status in the workflow progression.
// Both terminal statuses share the last rank; unknown statuses return -1.
func (s ApplicationStatus) Rank() int {
	if rank, ok := statusRank[s]; ok {
		return rank
	}
	return -1
}

// Application is a single approval request moving through the workflow.
type Application struct {
	ID                string            `db:"id" json:"id"`
	ApplicationNumber string            `db:"application_number" json:"applicationNumber"`
	Type              ApplicationType   `db:"type" json:"applicationType"`
	Status            ApplicationStatus `db:"status" json:"status"`
	InstitutionID     string            `db:"institution_id" json:"institutionId"`
	CourseName        *string           `db:"course_name" json:"courseName,omitempty"`
	CourseIntake      *int              `db:"course_intake" json:"courseIntake,omitempty"`
	SubmittedAt       *time.Time        `db:"submitted_at" json:"submittedAt,omitempty"`
	CreatedBy         string            `db:"created_by" json:"createdBy"`
	Version           int               `db:"version" json:"version"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updatedAt"`
}

// ApplicationFilter constrains listing queries.
type ApplicationFilter struct {
	Status        []ApplicationStatus
	Type          ApplicationType
	InstitutionID string
	EvaluatorID   string
	Limit         int
	Offset        int
}

// StatusChange is one audit row per application status change.
type StatusChange struct {
	ID            string            `db:"id" json:"id"`
	ApplicationID string            `db:"application_id" json:"applicationId"`
	FromStatus    ApplicationStatus `db:"from_status" json:"fromStatus"`
	ToStatus      ApplicationStatus `db:"to_status" json:"toStatus"`
	Trigger       string            `db:"trigger" json:"trigger"`
	ActorID       string            `db:"actor_id" json:"actorId"`
	Reason        *string           `db:"reason" json:"reason,omitempty"`
	Forced        bool              `db:"forced" json:"forced"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
}
