package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/models"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
	"github.com/noah-isme/aicte-approval-api/pkg/timeline"
)

// TimelineTracker seeds and advances application timeline stages.
// Stage slices are always in position order; mutators return the
// indexes of the stages they changed so callers persist only those.
type TimelineTracker struct {
	catalog *timeline.Catalog
}

// NewTimelineTracker constructs a tracker over the stage template catalog.
func NewTimelineTracker(catalog *timeline.Catalog) *TimelineTracker {
	if catalog == nil {
		catalog = timeline.DefaultCatalog()
	}
	return &TimelineTracker{catalog: catalog}
}

// Seed builds the initial stages for a new application of the given type.
func (t *TimelineTracker) Seed(applicationID string, appType models.ApplicationType, now time.Time) []models.TimelineStage {
	return InitializeStages(applicationID, t.catalog.For(appType), now)
}

// InitializeStages creates stages in template order. The first stage is
// current and the rest pending; submission completes the first stage.
func InitializeStages(applicationID string, templates []timeline.StageTemplate, now time.Time) []models.TimelineStage {
	stages := make([]models.TimelineStage, len(templates))
	for i, tpl := range templates {
		stages[i] = models.TimelineStage{
			ApplicationID: applicationID,
			Position:      i,
			Title:         tpl.Title,
			Phase:         tpl.Phase,
			Status:        models.StagePending,
			UpdatedAt:     now,
		}
		if tpl.Assignee != "" {
			assignee := tpl.Assignee
			stages[i].Assignee = &assignee
		}
	}
	if len(stages) > 0 {
		stages[0].Status = models.StageCurrent
	}
	return stages
}

// AdvanceStage sets the named stage to status. Completing a stage makes the
// next pending stage current; making a stage current completes every earlier
// unfinished stage. Completed stages never regress.
func AdvanceStage(stages []models.TimelineStage, title string, status models.StageStatus, now time.Time) ([]int, error) {
	idx := stageIndex(stages, title)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("stage %q not found", title))
	}
	return advanceAt(stages, idx, status, now)
}

func advanceAt(stages []models.TimelineStage, idx int, status models.StageStatus, now time.Time) ([]int, error) {
	stage := stages[idx]
	if stage.Status == status {
		return nil, nil
	}
	switch {
	case stage.Status == models.StageCompleted:
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("stage %q is already completed", stage.Title))
	case stage.Status == models.StageCurrent && status == models.StagePending:
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("stage %q cannot return to pending", stage.Title))
	case status != models.StageCurrent && status != models.StageCompleted:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported stage status %q", status))
	}

	changed := newIndexSet()
	for i := 0; i < idx; i++ {
		if stages[i].Status != models.StageCompleted {
			completeStage(&stages[i], now)
			changed.add(i)
		}
	}

	if status == models.StageCurrent {
		setStageStatus(&stages[idx], models.StageCurrent, now)
		changed.add(idx)
		return changed.sorted(), nil
	}

	completeStage(&stages[idx], now)
	changed.add(idx)
	if next := idx + 1; next < len(stages) && stages[next].Status == models.StagePending {
		setStageStatus(&stages[next], models.StageCurrent, now)
		changed.add(next)
	}
	return changed.sorted(), nil
}

// MoveToStatus aligns the timeline with an application status. The stage
// opened by a status is the first stage with the greatest phase rank not
// above the status rank. Terminal statuses complete every stage.
func MoveToStatus(stages []models.TimelineStage, status models.ApplicationStatus, now time.Time) ([]int, error) {
	if status.Terminal() {
		return CompleteAll(stages, now), nil
	}
	idx := stageForStatus(stages, status)
	if idx < 0 || stages[idx].Status != models.StagePending {
		return nil, nil
	}
	return advanceAt(stages, idx, models.StageCurrent, now)
}

// CompleteAll marks every unfinished stage completed.
func CompleteAll(stages []models.TimelineStage, now time.Time) []int {
	changed := make([]int, 0, len(stages))
	for i := range stages {
		if stages[i].Status != models.StageCompleted {
			completeStage(&stages[i], now)
			changed = append(changed, i)
		}
	}
	return changed
}

// CurrentStageTitle returns the title of the current stage, or of the last
// stage when every stage is completed.
func CurrentStageTitle(stages []models.TimelineStage) string {
	for _, stage := range stages {
		if stage.Status == models.StageCurrent {
			return stage.Title
		}
	}
	if n := len(stages); n > 0 && stages[n-1].Status == models.StageCompleted {
		return stages[n-1].Title
	}
	return ""
}

// CheckStageOrder verifies at most one current stage, with every earlier
// stage completed and every later stage pending.
func CheckStageOrder(stages []models.TimelineStage) error {
	current := -1
	for i, stage := range stages {
		if stage.Status != models.StageCurrent {
			continue
		}
		if current >= 0 {
			return fmt.Errorf("stages %d and %d are both current", current, i)
		}
		current = i
	}
	if current < 0 {
		return nil
	}
	for i, stage := range stages {
		if i < current && stage.Status != models.StageCompleted {
			return fmt.Errorf("stage %d before current is %s", i, stage.Status)
		}
		if i > current && stage.Status != models.StagePending {
			return fmt.Errorf("stage %d after current is %s", i, stage.Status)
		}
	}
	return nil
}

func stageForStatus(stages []models.TimelineStage, status models.ApplicationStatus) int {
	rank := status.Rank()
	best, bestRank := -1, -1
	for i, stage := range stages {
		r := stage.Phase.Rank()
		if r <= rank && r > bestRank {
			best, bestRank = i, r
		}
	}
	return best
}

func stageIndex(stages []models.TimelineStage, title string) int {
	title = strings.TrimSpace(title)
	for i, stage := range stages {
		if strings.EqualFold(stage.Title, title) {
			return i
		}
	}
	return -1
}

func completeStage(stage *models.TimelineStage, now time.Time) {
	setStageStatus(stage, models.StageCompleted, now)
	completedAt := now
	stage.CompletedAt = &completedAt
}

func setStageStatus(stage *models.TimelineStage, status models.StageStatus, now time.Time) {
	stage.Status = status
	stage.UpdatedAt = now
}

type indexSet map[int]struct{}

func newIndexSet() indexSet { return indexSet{} }

func (s indexSet) add(i int) { s[i] = struct{}{} }

func (s indexSet) sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
