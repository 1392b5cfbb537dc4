package service

import (
	"fmt"

	"github.com/noah-isme/aicte-approval-api/internal/models"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

// Trigger names the action that moves an application between statuses.
type Trigger string

const (
	TriggerSubmit          Trigger = "SUBMIT"
	TriggerStartScrutiny   Trigger = "START_SCRUTINY"
	TriggerVerifyDocuments Trigger = "VERIFY_DOCUMENTS"
	TriggerAssignEvaluator Trigger = "ASSIGN_EVALUATOR"
	TriggerApprove         Trigger = "APPROVE"
	TriggerReject          Trigger = "REJECT"
	// TriggerOverride is the administrative force-set and bypasses the table.
	TriggerOverride Trigger = "OVERRIDE"
)

type transitionRule struct {
	from []models.ApplicationStatus
	to   models.ApplicationStatus
}

var transitionTable = map[Trigger]transitionRule{
	TriggerSubmit: {
		from: []models.ApplicationStatus{models.StatusDraft},
		to:   models.StatusSubmitted,
	},
	TriggerStartScrutiny: {
		from: []models.ApplicationStatus{models.StatusSubmitted},
		to:   models.StatusScrutiny,
	},
	TriggerVerifyDocuments: {
		from: []models.ApplicationStatus{models.StatusSubmitted, models.StatusScrutiny},
		to:   models.StatusDocumentVerification,
	},
	TriggerAssignEvaluator: {
		from: []models.ApplicationStatus{
			models.StatusSubmitted,
			models.StatusScrutiny,
			models.StatusDocumentVerification,
			models.StatusUnderEvaluation,
		},
		to: models.StatusUnderEvaluation,
	},
	TriggerApprove: {
		from: []models.ApplicationStatus{models.StatusUnderEvaluation},
		to:   models.StatusApproved,
	},
	TriggerReject: {
		from: []models.ApplicationStatus{models.StatusUnderEvaluation},
		to:   models.StatusRejected,
	},
}

// NextStatus resolves the status reached by firing trigger from current.
func NextStatus(current models.ApplicationStatus, trigger Trigger) (models.ApplicationStatus, error) {
	rule, ok := transitionTable[trigger]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown trigger %s", trigger))
	}
	for _, from := range rule.from {
		if from == current {
			return rule.to, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrInvalidState,
		fmt.Sprintf("cannot %s an application in status %s", trigger, current))
}

// canFire reports whether trigger is legal from current.
func canFire(current models.ApplicationStatus, trigger Trigger) bool {
	_, err := NextStatus(current, trigger)
	return err == nil
}

// reviewTriggers maps the guided review targets onto their triggers.
var reviewTriggers = map[models.ApplicationStatus]Trigger{
	models.StatusScrutiny:             TriggerStartScrutiny,
	models.StatusDocumentVerification: TriggerVerifyDocuments,
}

// decisionTrigger maps a terminal status onto its trigger.
func decisionTrigger(status models.ApplicationStatus) Trigger {
	if status == models.StatusRejected {
		return TriggerReject
	}
	return TriggerApprove
}
