package models

import (
	"strings"
	"time"
)

// Recommendation is the evaluator's verdict on an application.
type Recommendation string

const (
	RecommendationApprove Recommendation = "approve"
	RecommendationReject  Recommendation = "reject"
	RecommendationRevise  Recommendation = "revise"
)

// ParseRecommendation normalises free-form labels such as "Approve".
func ParseRecommendation(raw string) (Recommendation, bool) {
	switch rec := Recommendation(strings.ToLower(strings.TrimSpace(raw))); rec {
	case RecommendationApprove, RecommendationReject, RecommendationRevise:
		return rec, true
	default:
		return "", false
	}
}

// Decision returns the terminal status implied by the recommendation, if any.
func (r Recommendation) Decision() (ApplicationStatus, bool) {
	switch r {
	case RecommendationApprove:
		return StatusApproved, true
	case RecommendationReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Evaluation is a scored review record tied to an assignment.
type Evaluation struct {
	ID             string         `db:"id" json:"id"`
	AssignmentID   string         `db:"assignment_id" json:"assignmentId"`
	ApplicationID  string         `db:"application_id" json:"applicationId"`
	EvaluatorID    string         `db:"evaluator_id" json:"evaluatorId"`
	Score          float64        `db:"score" json:"score"`
	Comments       string         `db:"comments" json:"comments"`
	Recommendation Recommendation `db:"recommendation" json:"recommendation"`
	SiteVisitNotes *string        `db:"site_visit_notes" json:"siteVisitNotes,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}
