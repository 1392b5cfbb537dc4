package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

// DeadlineWindows holds the alerting thresholds for assignment deadlines.
type DeadlineWindows struct {
	Upcoming time.Duration
	Nearing  time.Duration
}

// DefaultDeadlineWindows are seven days for upcoming and three for nearing.
var DefaultDeadlineWindows = DeadlineWindows{Upcoming: 7 * 24 * time.Hour, Nearing: 3 * 24 * time.Hour}

func (w DeadlineWindows) normalized() DeadlineWindows {
	if w.Upcoming <= 0 {
		w.Upcoming = DefaultDeadlineWindows.Upcoming
	}
	if w.Nearing <= 0 {
		w.Nearing = DefaultDeadlineWindows.Nearing
	}
	return w
}

// AssignmentService serves evaluator assignment listings.
type AssignmentService struct {
	store   repository.AssignmentStore
	windows DeadlineWindows
	logger  *zap.Logger
	now     func() time.Time
}

// NewAssignmentService constructs the service.
func NewAssignmentService(store repository.AssignmentStore, windows DeadlineWindows, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		store:   store,
		windows: windows.normalized(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListForActor returns the evaluator's own assignments, or all for admins.
func (s *AssignmentService) ListForActor(ctx context.Context, actor models.Actor, openOnly bool) ([]models.EvaluatorAssignment, error) {
	filter := models.AssignmentFilter{OpenOnly: openOnly}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleEvaluator:
		filter.EvaluatorID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}
	assignments, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list assignments")
	}
	return assignments, nil
}

// Metrics summarises assignments relative to now.
func (s *AssignmentService) Metrics(assignments []models.EvaluatorAssignment) dto.AssignmentMetrics {
	return ComputeAssignmentMetrics(assignments, s.now(), s.windows)
}

// ComputeAssignmentMetrics counts assignments by deadline proximity. Only
// open assignments count towards pending, upcoming, nearing and overdue.
func ComputeAssignmentMetrics(assignments []models.EvaluatorAssignment, now time.Time, windows DeadlineWindows) dto.AssignmentMetrics {
	windows = windows.normalized()
	var m dto.AssignmentMetrics
	for _, a := range assignments {
		if !a.Open() {
			m.Completed++
			continue
		}
		m.Open++
		if a.Deadline == nil {
			m.Pending++
			continue
		}
		remaining := a.Deadline.Sub(now)
		if remaining < 0 {
			m.Overdue++
			continue
		}
		m.Pending++
		if remaining <= windows.Upcoming {
			m.Upcoming++
		}
		if remaining <= windows.Nearing {
			m.NearingDeadline++
		}
	}
	return m
}

// IsNearingDeadline reports whether an open assignment's deadline falls within the window.
func IsNearingDeadline(a models.EvaluatorAssignment, now time.Time, window time.Duration) bool {
	if !a.Open() || a.Deadline == nil {
		return false
	}
	remaining := a.Deadline.Sub(now)
	return remaining >= 0 && remaining <= window
}

// createAssignment always inserts a new row; duplicates per evaluator are allowed.
func createAssignment(ctx context.Context, store repository.AssignmentStore, assignment models.EvaluatorAssignment) (*models.EvaluatorAssignment, error) {
	if err := store.Create(ctx, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// completeAssignment stamps completion once; later calls are no-ops.
func completeAssignment(ctx context.Context, store repository.AssignmentStore, assignment *models.EvaluatorAssignment, now time.Time) (bool, error) {
	if !assignment.Open() {
		return false, nil
	}
	changed, err := store.Complete(ctx, assignment.ID, now)
	if err != nil {
		return false, err
	}
	if changed {
		completedAt := now
		assignment.CompletedAt = &completedAt
	}
	return changed, nil
}
