package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

// WorkflowUnit runs a logical operation inside one transaction.
type WorkflowUnit interface {
	WithinTx(ctx context.Context, fn func(s repository.Stores) error) error
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(s repository.Stores, app *models.Application) error) error
}

// WorkflowEventPublisher receives events for committed changes.
type WorkflowEventPublisher interface {
	Publish(ctx context.Context, event models.WorkflowEvent)
}

// ApplicationServiceConfig tunes application numbering.
type ApplicationServiceConfig struct {
	NumberPrefix string
}

// ApplicationService is the application status machine. It is the only
// component that changes an application's status, and it keeps the
// timeline, assignments and audit trail in step within one transaction.
type ApplicationService struct {
	uow       WorkflowUnit
	reads     repository.Stores
	tracker   *TimelineTracker
	recorder  *EvaluationRecorder
	validator *validator.Validate
	metrics   *MetricsService
	events    WorkflowEventPublisher
	logger    *zap.Logger
	prefix    string
	now       func() time.Time
}

// ApplicationServiceOption configures the service.
type ApplicationServiceOption func(*ApplicationService)

// WithApplicationMetrics records transitions and conflicts.
func WithApplicationMetrics(metrics *MetricsService) ApplicationServiceOption {
	return func(s *ApplicationService) {
		s.metrics = metrics
	}
}

// WithWorkflowEvents publishes events after each committed change.
func WithWorkflowEvents(publisher WorkflowEventPublisher) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

// WithApplicationClock overrides the time source.
func WithApplicationClock(now func() time.Time) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewApplicationService constructs the status machine.
func NewApplicationService(uow WorkflowUnit, reads repository.Stores, tracker *TimelineTracker, validate *validator.Validate, logger *zap.Logger, cfg ApplicationServiceConfig, opts ...ApplicationServiceOption) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = NewTimelineTracker(nil)
	}
	if strings.TrimSpace(cfg.NumberPrefix) == "" {
		cfg.NumberPrefix = "AICTE"
	}
	svc := &ApplicationService{
		uow:       uow,
		reads:     reads,
		tracker:   tracker,
		recorder:  NewEvaluationRecorder(),
		validator: validate,
		events:    noopPublisher{},
		logger:    logger,
		prefix:    cfg.NumberPrefix,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create opens a draft application with its timeline and initial documents.
func (s *ApplicationService) Create(ctx context.Context, actor models.Actor, req dto.CreateApplicationRequest) (*dto.ApplicationDetail, error) {
	institutionID, err := s.creatingInstitution(actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()
	detail := &dto.ApplicationDetail{}
	err = s.uow.WithinTx(ctx, func(st repository.Stores) error {
		seq, err := st.Applications.NextSequence(ctx, now.Year())
		if err != nil {
			return err
		}
		app := models.Application{
			ApplicationNumber: FormatApplicationNumber(s.prefix, now.Year(), seq),
			Type:              req.Type,
			Status:            models.StatusDraft,
			InstitutionID:     institutionID,
			CourseName:        trimmedPtr(req.CourseName),
			CourseIntake:      req.CourseIntake,
			CreatedBy:         actor.UserID,
			Version:           1,
			CreatedAt:         now,
		}
		if err := st.Applications.Create(ctx, &app); err != nil {
			return err
		}

		stages := s.tracker.Seed(app.ID, app.Type, now)
		if err := st.Timeline.CreateBatch(ctx, stages); err != nil {
			return err
		}

		docs := make([]models.Document, len(req.Documents))
		for i, in := range req.Documents {
			docs[i] = models.Document{
				ApplicationID: app.ID,
				Category:      strings.TrimSpace(in.Category),
				Status:        models.DocumentPending,
				FileName:      strings.TrimSpace(in.FileName),
				FileURL:       in.FileURL,
				MimeType:      in.MimeType,
				SizeBytes:     in.SizeBytes,
				CreatedAt:     now,
			}
		}
		if err := st.Documents.CreateBatch(ctx, docs); err != nil {
			return err
		}

		detail.Application = app
		detail.Stages = stages
		detail.Documents = docs
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to create application")
	}

	s.logger.Info("application created",
		zap.String("application_id", detail.Application.ID),
		zap.String("application_number", detail.Application.ApplicationNumber),
		zap.String("type", string(detail.Application.Type)))
	s.publish(ctx, models.EventApplicationCreated, &detail.Application, actor)
	return detail, nil
}

// Get returns an application with its timeline, documents, assignments and evaluations.
func (s *ApplicationService) Get(ctx context.Context, actor models.Actor, id string) (*dto.ApplicationDetail, error) {
	app, err := s.reads.Applications.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application not found", "failed to load application")
	}
	return s.detail(ctx, actor, app)
}

// GetByNumber looks an application up by its human-readable number.
func (s *ApplicationService) GetByNumber(ctx context.Context, actor models.Actor, number string) (*dto.ApplicationDetail, error) {
	number = strings.Trim(strings.TrimSpace(number), "/")
	if number == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "application number is required")
	}
	app, err := s.reads.Applications.GetByNumber(ctx, number)
	if err != nil {
		return nil, notFoundOr(err, "application not found", "failed to load application")
	}
	return s.detail(ctx, actor, app)
}

func (s *ApplicationService) detail(ctx context.Context, actor models.Actor, app *models.Application) (*dto.ApplicationDetail, error) {
	if err := authorizeView(ctx, s.reads.Assignments, actor, app); err != nil {
		return nil, err
	}
	stages, err := s.reads.Timeline.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, internalError(err, "failed to load timeline")
	}
	docs, err := s.reads.Documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, internalError(err, "failed to load documents")
	}
	filter := models.AssignmentFilter{ApplicationID: app.ID}
	if actor.Role == models.RoleEvaluator {
		filter.EvaluatorID = actor.UserID
	}
	assignments, err := s.reads.Assignments.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to load assignments")
	}
	evaluations, err := s.reads.Evaluations.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, internalError(err, "failed to load evaluations")
	}
	if actor.Role == models.RoleEvaluator {
		evaluations = filterEvaluations(evaluations, actor.UserID)
	}
	return &dto.ApplicationDetail{
		Application: *app,
		Stages:      stages,
		Documents:   docs,
		Assignments: assignments,
		Evaluations: evaluations,
	}, nil
}

// List returns the applications visible to the actor.
func (s *ApplicationService) List(ctx context.Context, actor models.Actor, query dto.ApplicationQuery) ([]models.Application, *models.Pagination, error) {
	filter, err := scopeFilter(actor)
	if err != nil {
		return nil, nil, err
	}
	for _, status := range query.Status {
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
		}
	}
	if query.Type != "" && !query.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown application type %q", query.Type))
	}
	page, size := normalizePage(query.Page, query.PageSize)
	filter.Status = query.Status
	filter.Type = query.Type
	filter.Limit = size
	filter.Offset = (page - 1) * size

	apps, total, err := s.reads.Applications.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list applications")
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Submit moves a draft application to submitted.
func (s *ApplicationService) Submit(ctx context.Context, actor models.Actor, id string) (*models.Application, error) {
	if actor.Role == models.RoleEvaluator {
		return nil, appErrors.ErrForbidden
	}
	var result models.Application
	err := s.uow.WithinApplicationTx(ctx, id, func(st repository.Stores, app *models.Application) error {
		if err := authorizeOwner(actor, app); err != nil {
			return err
		}
		if err := s.fire(ctx, st, app, TriggerSubmit, actor); err != nil {
			return err
		}
		result = *app
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to submit application")
	}
	s.afterTransition(ctx, TriggerSubmit, &result, actor)
	return &result, nil
}

// AdvanceReview moves a submitted application into scrutiny or document verification.
func (s *ApplicationService) AdvanceReview(ctx context.Context, actor models.Actor, id string, req dto.AdvanceReviewRequest) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	trigger, ok := reviewTriggers[req.Status]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be scrutiny or document_verification")
	}
	var result models.Application
	err := s.uow.WithinApplicationTx(ctx, id, func(st repository.Stores, app *models.Application) error {
		if err := s.fire(ctx, st, app, trigger, actor); err != nil {
			return err
		}
		result = *app
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to advance application")
	}
	s.afterTransition(ctx, trigger, &result, actor)
	return &result, nil
}

// AssignEvaluator creates a new assignment and moves the application under evaluation.
func (s *ApplicationService) AssignEvaluator(ctx context.Context, actor models.Actor, id string, req dto.AssignEvaluatorRequest) (*dto.AssignmentResult, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "priority must be low, medium or high")
	}

	var result dto.AssignmentResult
	err := s.uow.WithinApplicationTx(ctx, id, func(st repository.Stores, app *models.Application) error {
		evaluator, err := loadEvaluator(ctx, st.Users, req.EvaluatorID)
		if err != nil {
			return err
		}
		to, err := NextStatus(app.Status, TriggerAssignEvaluator)
		if err != nil {
			return err
		}

		now := s.now()
		assignment, err := createAssignment(ctx, st.Assignments, models.EvaluatorAssignment{
			ApplicationID: app.ID,
			EvaluatorID:   evaluator.ID,
			AssignedBy:    actor.UserID,
			Priority:      priority,
			Deadline:      utcPtr(req.Deadline),
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}

		if to != app.Status {
			if err := s.applyStatus(ctx, st, app, TriggerAssignEvaluator, to, actor, nil, false); err != nil {
				return err
			}
		}
		if err := s.syncTimeline(ctx, st, app.ID, to, evaluator.FullName); err != nil {
			return err
		}
		result = dto.AssignmentResult{Assignment: *assignment, Application: *app}
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to assign evaluator")
	}
	s.logger.Info("evaluator assigned",
		zap.String("application_id", result.Application.ID),
		zap.String("assignment_id", result.Assignment.ID),
		zap.String("evaluator_id", result.Assignment.EvaluatorID))
	s.afterTransition(ctx, TriggerAssignEvaluator, &result.Application, actor)
	s.publish(ctx, models.EventEvaluatorAssigned, &result.Application, actor)
	return &result, nil
}

// RecordEvaluation stores an evaluator's verdict, completes the assignment
// and, when the latest verdict is a decision, closes the application.
func (s *ApplicationService) RecordEvaluation(ctx context.Context, actor models.Actor, assignmentID string, req dto.RecordEvaluationRequest) (*dto.EvaluationResult, error) {
	assignment, err := s.reads.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found", "failed to load assignment")
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleEvaluator && actor.UserID == assignment.EvaluatorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another evaluator")
	}
	input, err := s.recorder.Validate(req)
	if err != nil {
		return nil, err
	}

	var (
		result   dto.EvaluationResult
		decision Trigger
	)
	err = s.uow.WithinApplicationTx(ctx, assignment.ApplicationID, func(st repository.Stores, app *models.Application) error {
		if app.Status != models.StatusUnderEvaluation {
			return appErrors.Clone(appErrors.ErrInvalidState,
				fmt.Sprintf("application is %s, evaluations require %s", app.Status, models.StatusUnderEvaluation))
		}
		outcome, err := s.recorder.Record(ctx, st, assignmentID, input, s.now())
		if err != nil {
			return err
		}

		if to, ok := outcome.Latest.Recommendation.Decision(); ok {
			decision = decisionTrigger(to)
			if err := s.fire(ctx, st, app, decision, actor); err != nil {
				return err
			}
		}
		result = dto.EvaluationResult{Evaluation: outcome.Evaluation, Assignment: outcome.Assignment, Application: *app}
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to record evaluation")
	}

	s.logger.Info("evaluation recorded",
		zap.String("application_id", result.Application.ID),
		zap.String("assignment_id", assignmentID),
		zap.String("recommendation", string(result.Evaluation.Recommendation)),
		zap.Float64("score", result.Evaluation.Score))
	s.publish(ctx, models.EventEvaluationRecorded, &result.Application, actor)
	if decision != "" {
		s.afterTransition(ctx, decision, &result.Application, actor)
	}
	return &result, nil
}

// SetStatus force-sets an application's status. No transition rules are
// checked and the timeline is left as is; the change is audited as forced.
func (s *ApplicationService) SetStatus(ctx context.Context, actor models.Actor, id string, req dto.SetStatusRequest) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required for a status override")
	}

	var (
		result  models.Application
		changed bool
	)
	err := s.uow.WithinApplicationTx(ctx, id, func(st repository.Stores, app *models.Application) error {
		if app.Status != req.Status {
			if err := s.applyStatus(ctx, st, app, TriggerOverride, req.Status, actor, &reason, true); err != nil {
				return err
			}
			changed = true
		}
		result = *app
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to override application status")
	}
	if changed {
		s.logger.Warn("application status overridden",
			zap.String("application_id", result.ID),
			zap.String("status", string(result.Status)),
			zap.String("actor_id", actor.UserID),
			zap.String("reason", reason))
		s.afterTransition(ctx, TriggerOverride, &result, actor)
	}
	return &result, nil
}

// AdvanceStage sets a named timeline stage's status without changing the
// application status, for stages such as site inspection that share a phase.
func (s *ApplicationService) AdvanceStage(ctx context.Context, actor models.Actor, id string, req dto.AdvanceStageRequest) ([]models.TimelineStage, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}

	var (
		stages []models.TimelineStage
		result models.Application
	)
	err := s.uow.WithinApplicationTx(ctx, id, func(st repository.Stores, app *models.Application) error {
		var err error
		stages, err = st.Timeline.ListByApplication(ctx, app.ID)
		if err != nil {
			return err
		}
		changed, err := AdvanceStage(stages, req.Title, req.Status, s.now())
		if err != nil {
			return err
		}
		result = *app
		return persistStages(ctx, st.Timeline, stages, changed)
	})
	if err != nil {
		return nil, txError(err, "failed to advance stage")
	}
	s.publish(ctx, models.EventTimelineStageMoved, &result, actor)
	return stages, nil
}

// History returns the status audit trail of an application.
func (s *ApplicationService) History(ctx context.Context, actor models.Actor, id string) ([]models.StatusChange, error) {
	app, err := s.reads.Applications.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application not found", "failed to load application")
	}
	if err := authorizeView(ctx, s.reads.Assignments, actor, app); err != nil {
		return nil, err
	}
	changes, err := s.reads.History.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, internalError(err, "failed to load status history")
	}
	return changes, nil
}

// fire applies a table transition and moves the timeline with it.
func (s *ApplicationService) fire(ctx context.Context, st repository.Stores, app *models.Application, trigger Trigger, actor models.Actor) error {
	to, err := NextStatus(app.Status, trigger)
	if err != nil {
		return err
	}
	if err := s.applyStatus(ctx, st, app, trigger, to, actor, nil, false); err != nil {
		return err
	}
	return s.syncTimeline(ctx, st, app.ID, to, "")
}

// applyStatus writes the status under the version guard and audits it.
func (s *ApplicationService) applyStatus(ctx context.Context, st repository.Stores, app *models.Application, trigger Trigger, to models.ApplicationStatus, actor models.Actor, reason *string, forced bool) error {
	now := s.now()
	params := repository.UpdateApplicationStatusParams{
		ID:              app.ID,
		Status:          to,
		ExpectedVersion: app.Version,
		UpdatedAt:       now,
	}
	if app.SubmittedAt == nil && to != models.StatusDraft {
		params.SubmittedAt = &now
	}
	if err := st.Applications.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordConflict(string(trigger))
			return appErrors.Clone(appErrors.ErrConflict, "application was modified concurrently, reload and retry")
		}
		return err
	}

	from := app.Status
	if err := st.History.Create(ctx, &models.StatusChange{
		ApplicationID: app.ID,
		FromStatus:    from,
		ToStatus:      to,
		Trigger:       string(trigger),
		ActorID:       actor.UserID,
		Reason:        reason,
		Forced:        forced,
		CreatedAt:     now,
	}); err != nil {
		return err
	}

	app.Status = to
	app.Version++
	app.UpdatedAt = now
	if params.SubmittedAt != nil {
		app.SubmittedAt = params.SubmittedAt
	}
	return nil
}

// syncTimeline moves the stages to the given status, optionally labelling
// the opened stage with an assignee.
func (s *ApplicationService) syncTimeline(ctx context.Context, st repository.Stores, applicationID string, status models.ApplicationStatus, assignee string) error {
	stages, err := st.Timeline.ListByApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	now := s.now()
	changed, err := MoveToStatus(stages, status, now)
	if err != nil {
		return err
	}
	if assignee = strings.TrimSpace(assignee); assignee != "" {
		if idx := assigneeStage(stages, status); idx >= 0 {
			label := assignee
			stages[idx].Assignee = &label
			stages[idx].UpdatedAt = now
			changed = appendIndex(changed, idx)
		}
	}
	return persistStages(ctx, st.Timeline, stages, changed)
}

// assigneeStage picks the stage to label for status: the stage the status
// opens, or the current stage of the same phase once that one is completed.
// Completed stages keep their label.
func assigneeStage(stages []models.TimelineStage, status models.ApplicationStatus) int {
	idx := stageForStatus(stages, status)
	if idx < 0 || stages[idx].Status != models.StageCompleted {
		return idx
	}
	for i, stage := range stages {
		if stage.Status == models.StageCurrent && stage.Phase == status {
			return i
		}
	}
	return -1
}

func (s *ApplicationService) afterTransition(ctx context.Context, trigger Trigger, app *models.Application, actor models.Actor) {
	s.logger.Info("application status changed",
		zap.String("application_id", app.ID),
		zap.String("trigger", string(trigger)),
		zap.String("status", string(app.Status)),
		zap.String("actor_id", actor.UserID))
	s.metrics.RecordTransition(trigger, app.Status)
	s.publish(ctx, models.EventApplicationStatus, app, actor)
}

func (s *ApplicationService) publish(ctx context.Context, eventType models.WorkflowEventType, app *models.Application, actor models.Actor) {
	s.events.Publish(ctx, models.WorkflowEvent{
		Type:          eventType,
		ApplicationID: app.ID,
		InstitutionID: app.InstitutionID,
		Status:        app.Status,
		ActorID:       actor.UserID,
		OccurredAt:    s.now(),
	})
}

func (s *ApplicationService) creatingInstitution(actor models.Actor, req dto.CreateApplicationRequest) (string, error) {
	requested := strings.TrimSpace(req.InstitutionID)
	switch actor.Role {
	case models.RoleInstitution:
		if requested != "" && requested != actor.InstitutionID {
			return "", appErrors.Clone(appErrors.ErrForbidden, "institutions may only apply on their own behalf")
		}
		return actor.InstitutionID, nil
	case models.RoleAdmin:
		if requested == "" {
			return "", appErrors.Clone(appErrors.ErrValidation, "institutionId is required")
		}
		return requested, nil
	default:
		return "", appErrors.ErrForbidden
	}
}

func (s *ApplicationService) validateCreate(req dto.CreateApplicationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if !req.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown application type %q", req.Type))
	}
	if req.Type.RequiresCourse() {
		if req.CourseName == nil || strings.TrimSpace(*req.CourseName) == "" || req.CourseIntake == nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("courseName and courseIntake are required for %s", req.Type))
		}
	}
	return nil
}

// FormatApplicationNumber renders PREFIX/YEAR/NNNNNN.
func FormatApplicationNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s/%d/%06d", prefix, year, seq)
}

func persistStages(ctx context.Context, store repository.TimelineStore, stages []models.TimelineStage, changed []int) error {
	for _, idx := range changed {
		if err := store.Update(ctx, &stages[idx]); err != nil {
			return err
		}
	}
	return nil
}

func appendIndex(indexes []int, idx int) []int {
	for _, existing := range indexes {
		if existing == idx {
			return indexes
		}
	}
	return append(indexes, idx)
}

func filterEvaluations(evaluations []models.Evaluation, evaluatorID string) []models.Evaluation {
	out := evaluations[:0:0]
	for _, ev := range evaluations {
		if ev.EvaluatorID == evaluatorID {
			out = append(out, ev)
		}
	}
	return out
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.WorkflowEvent) {}
