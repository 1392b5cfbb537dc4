package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// ApprovalRate is approved over total, 0 when there are no applications.
func ApprovalRate(apps []models.Application) float64 {
	if len(apps) == 0 {
		return 0
	}
	approved := 0
	for _, app := range apps {
		if app.Status == models.StatusApproved {
			approved++
		}
	}
	return float64(approved) / float64(len(apps))
}

// AverageProcessingDays is the floored mean of updatedAt minus submittedAt,
// in days, over approved applications with a submission time.
func AverageProcessingDays(apps []models.Application) int {
	var (
		total time.Duration
		count int
	)
	for _, app := range apps {
		if app.Status != models.StatusApproved || app.SubmittedAt == nil {
			continue
		}
		elapsed := app.UpdatedAt.Sub(*app.SubmittedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		total += elapsed
		count++
	}
	if count == 0 {
		return 0
	}
	mean := total.Hours() / 24 / float64(count)
	return int(math.Floor(mean))
}

// StatusDistribution counts applications per status, listing every status.
func StatusDistribution(apps []models.Application) map[models.ApplicationStatus]int {
	dist := make(map[models.ApplicationStatus]int, len(models.ApplicationStatuses))
	for _, status := range models.ApplicationStatuses {
		dist[status] = 0
	}
	for _, app := range apps {
		dist[app.Status]++
	}
	return dist
}

// AlertOptions controls which alerts BuildAlerts emits.
type AlertOptions struct {
	NearingWindow     time.Duration
	IncludeUnassigned bool
}

// BuildAlerts derives threshold alerts from applications and assignments.
// The assignments must cover every application considered for the
// unassigned alert.
func BuildAlerts(apps []models.Application, assignments []models.EvaluatorAssignment, now time.Time, opts AlertOptions) []dto.Alert {
	if opts.NearingWindow <= 0 {
		opts.NearingWindow = DefaultDeadlineWindows.Nearing
	}
	byID := make(map[string]models.Application, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}
	openByApp := make(map[string]int, len(apps))
	for _, a := range assignments {
		if a.Open() {
			openByApp[a.ApplicationID]++
		}
	}

	alerts := make([]dto.Alert, 0)
	for _, app := range apps {
		switch app.Status {
		case models.StatusUnderEvaluation:
			if opts.IncludeUnassigned && openByApp[app.ID] == 0 {
				alerts = append(alerts, dto.Alert{
					Kind:              dto.AlertUnassignedEvaluation,
					ApplicationID:     app.ID,
					ApplicationNumber: app.ApplicationNumber,
					Message:           fmt.Sprintf("%s is under evaluation without an open assignment", app.ApplicationNumber),
				})
			}
		case models.StatusSubmitted:
			alerts = append(alerts, dto.Alert{
				Kind:              dto.AlertAwaitingReview,
				ApplicationID:     app.ID,
				ApplicationNumber: app.ApplicationNumber,
				Message:           fmt.Sprintf("%s is awaiting initial review", app.ApplicationNumber),
			})
		}
	}
	for _, a := range assignments {
		if !IsNearingDeadline(a, now, opts.NearingWindow) {
			continue
		}
		app, ok := byID[a.ApplicationID]
		if !ok {
			continue
		}
		deadline := *a.Deadline
		alerts = append(alerts, dto.Alert{
			Kind:              dto.AlertNearingDeadline,
			ApplicationID:     app.ID,
			ApplicationNumber: app.ApplicationNumber,
			AssignmentID:      a.ID,
			Deadline:          &deadline,
			Message:           fmt.Sprintf("evaluation of %s is due %s", app.ApplicationNumber, deadline.Format("2006-01-02")),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Kind != alerts[j].Kind {
			return alertOrder[alerts[i].Kind] < alertOrder[alerts[j].Kind]
		}
		return alerts[i].ApplicationNumber < alerts[j].ApplicationNumber
	})
	return alerts
}

var alertOrder = map[dto.AlertKind]int{
	dto.AlertUnassignedEvaluation: 0,
	dto.AlertNearingDeadline:      1,
	dto.AlertAwaitingReview:       2,
}
