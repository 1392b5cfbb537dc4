package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

const dashboardKeyPrefix = "dash"

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	Windows  DeadlineWindows
}

// DashboardService composes role-scoped dashboards and the tracker view.
// It only reads; stale results are acceptable.
type DashboardService struct {
	reads  repository.Stores
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with defaults.
func NewDashboardService(reads repository.Stores, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	cfg.Windows = cfg.Windows.normalized()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		reads:  reads,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		cfg:    cfg,
	}
}

// DashboardCacheKey names the cached dashboard for the actor's scope.
func DashboardCacheKey(actor models.Actor) string {
	switch actor.Role {
	case models.RoleAdmin:
		return dashboardKeyPrefix + ":admin"
	case models.RoleInstitution:
		return fmt.Sprintf("%s:institution:%s", dashboardKeyPrefix, actor.InstitutionID)
	default:
		return fmt.Sprintf("%s:evaluator:%s", dashboardKeyPrefix, actor.UserID)
	}
}

// Stats returns the actor's dashboard and whether it came from cache.
func (s *DashboardService) Stats(ctx context.Context, actor models.Actor) (*dto.DashboardStats, bool, error) {
	if _, err := scopeFilter(actor); err != nil {
		return nil, false, err
	}
	key := DashboardCacheKey(actor)
	if s.cache != nil {
		var cached dto.DashboardStats
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.composeStats(ctx, actor)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return stats, false, nil
}

func (s *DashboardService) composeStats(ctx context.Context, actor models.Actor) (*dto.DashboardStats, error) {
	apps, assignments, err := s.scopedData(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.reads.Documents.CountByApplications(ctx, applicationIDs(apps))
	if err != nil {
		return nil, internalError(err, "failed to count documents")
	}

	now := s.now()
	return &dto.DashboardStats{
		Role:              actor.Role,
		TotalApplications: len(apps),
		ApprovalRate:      ApprovalRate(apps),
		AvgProcessingDays: AverageProcessingDays(apps),
		Distribution:      StatusDistribution(apps),
		Assignments:       ComputeAssignmentMetrics(assignments, now, s.cfg.Windows),
		Documents:         SumDocumentCounts(counts),
		Alerts: BuildAlerts(apps, assignments, now, AlertOptions{
			NearingWindow:     s.cfg.Windows.Nearing,
			IncludeUnassigned: actor.Role != models.RoleEvaluator,
		}),
		GeneratedAt: now,
	}, nil
}

// scopedData loads the actor's applications and the assignments relevant to them.
func (s *DashboardService) scopedData(ctx context.Context, actor models.Actor) ([]models.Application, []models.EvaluatorAssignment, error) {
	filter, err := scopeFilter(actor)
	if err != nil {
		return nil, nil, err
	}
	apps, err := s.reads.Applications.ListAll(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to load applications")
	}

	var assignmentFilter models.AssignmentFilter
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleEvaluator:
		assignmentFilter.EvaluatorID = actor.UserID
	default:
		if len(apps) == 0 {
			return apps, nil, nil
		}
		assignmentFilter.ApplicationIDs = applicationIDs(apps)
	}
	assignments, err := s.reads.Assignments.List(ctx, assignmentFilter)
	if err != nil {
		return nil, nil, internalError(err, "failed to load assignments")
	}
	return apps, assignments, nil
}

// Tracker lists the actor's visible applications with timeline and review progress.
func (s *DashboardService) Tracker(ctx context.Context, actor models.Actor) (*dto.TrackerView, error) {
	filter, err := scopeFilter(actor)
	if err != nil {
		return nil, err
	}
	apps, err := s.reads.Applications.ListAll(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to load applications")
	}
	ids := applicationIDs(apps)

	stages, err := s.reads.Timeline.ListByApplications(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to load timelines")
	}
	counts, err := s.reads.Documents.CountByApplications(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to count documents")
	}
	// Evaluators only see their own verdicts.
	var evaluatorID string
	if actor.Role == models.RoleEvaluator {
		evaluatorID = actor.UserID
	}
	latest, err := s.reads.Evaluations.LatestByApplications(ctx, ids, evaluatorID)
	if err != nil {
		return nil, internalError(err, "failed to load evaluations")
	}

	stagesByApp := make(map[string][]models.TimelineStage, len(apps))
	for _, stage := range stages {
		stagesByApp[stage.ApplicationID] = append(stagesByApp[stage.ApplicationID], stage)
	}
	countsByApp := make(map[string]models.DocumentCounts, len(counts))
	for _, c := range counts {
		countsByApp[c.ApplicationID] = c
	}
	latestByApp := make(map[string]models.Evaluation, len(latest))
	for _, ev := range latest {
		latestByApp[ev.ApplicationID] = ev
	}

	entries := make([]dto.TrackerEntry, 0, len(apps))
	for _, app := range apps {
		appStages := stagesByApp[app.ID]
		docCounts, ok := countsByApp[app.ID]
		if !ok {
			docCounts = models.DocumentCounts{ApplicationID: app.ID}
		}
		entry := dto.TrackerEntry{
			ApplicationID:        app.ID,
			ApplicationNumber:    app.ApplicationNumber,
			Type:                 app.Type,
			Status:               app.Status,
			InstitutionID:        app.InstitutionID,
			SubmittedAt:          app.SubmittedAt,
			UpdatedAt:            app.UpdatedAt,
			CurrentStage:         CurrentStageTitle(appStages),
			Stages:               appStages,
			VerificationProgress: VerificationProgress(docCounts),
			Documents:            docCounts,
		}
		if ev, ok := latestByApp[app.ID]; ok {
			score := ev.Score
			entry.LatestScore = &score
			entry.LatestRecommendation = ev.Recommendation
		}
		entries = append(entries, entry)
	}
	return &dto.TrackerView{Entries: entries, GeneratedAt: s.now()}, nil
}

// Invalidate drops cached dashboards affected by a change to an application
// of the given institution.
func (s *DashboardService) Invalidate(ctx context.Context, institutionID string) error {
	if !s.cache.Enabled() {
		return nil
	}
	patterns := []string{
		dashboardKeyPrefix + ":admin",
		dashboardKeyPrefix + ":evaluator:*",
	}
	if institutionID != "" {
		patterns = append(patterns, fmt.Sprintf("%s:institution:%s", dashboardKeyPrefix, institutionID))
	}
	for _, pattern := range patterns {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate dashboard cache")
		}
	}
	return nil
}

func applicationIDs(apps []models.Application) []string {
	ids := make([]string, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}
	return ids
}
