package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

var (
	adminActor       = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	institutionActor = models.Actor{UserID: "inst-user-1", Role: models.RoleInstitution, InstitutionID: "inst-1"}
	otherInstitution = models.Actor{UserID: "inst-user-2", Role: models.RoleInstitution, InstitutionID: "inst-2"}
	evaluatorActor   = models.Actor{UserID: "eval-1", Role: models.RoleEvaluator}
	otherEvaluator   = models.Actor{UserID: "eval-2", Role: models.RoleEvaluator}
)

type workflowFixture struct {
	db     *memoryDB
	svc    *ApplicationService
	events *recordingPublisher
	now    time.Time
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	db := newMemoryDB()
	db.seedUser(models.User{ID: "eval-1", FullName: "Dr. Meera Rao", Role: models.RoleEvaluator, Active: true})
	db.seedUser(models.User{ID: "eval-2", FullName: "Prof. Arjun Das", Role: models.RoleEvaluator, Active: true})
	db.seedUser(models.User{ID: "eval-3", FullName: "Retired Reviewer", Role: models.RoleEvaluator, Active: false})
	db.seedUser(models.User{ID: "admin-1", FullName: "Portal Admin", Role: models.RoleAdmin, Active: true})

	f := &workflowFixture{
		db:     db,
		events: &recordingPublisher{},
		now:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewApplicationService(db, db.Stores(), NewTimelineTracker(nil), nil, zap.NewNop(), ApplicationServiceConfig{},
		WithWorkflowEvents(f.events),
		WithApplicationClock(func() time.Time { return f.now }))
	return f
}

func (f *workflowFixture) tick(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *workflowFixture) create(t *testing.T, appType models.ApplicationType, docs int) *models.Application {
	t.Helper()
	req := dto.CreateApplicationRequest{Type: appType}
	if appType.RequiresCourse() {
		name := "B.Tech Computer Science"
		intake := 60
		req.CourseName = &name
		req.CourseIntake = &intake
	}
	for i := 0; i < docs; i++ {
		req.Documents = append(req.Documents, dto.DocumentInput{Category: "affidavit", FileName: "affidavit.pdf", SizeBytes: 1024})
	}
	detail, err := f.svc.Create(context.Background(), institutionActor, req)
	require.NoError(t, err)
	return &detail.Application
}

// underEvaluation creates and submits an application and assigns eval-1.
func (f *workflowFixture) underEvaluation(t *testing.T, appType models.ApplicationType) (*models.Application, string) {
	t.Helper()
	app := f.create(t, appType, 2)
	_, err := f.svc.Submit(context.Background(), institutionActor, app.ID)
	require.NoError(t, err)
	f.tick(time.Hour)
	res, err := f.svc.AssignEvaluator(context.Background(), adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1"})
	require.NoError(t, err)
	f.tick(time.Hour)
	return &res.Application, res.Assignment.ID
}

func score(v float64) *float64 { return &v }

func requireAppError(t *testing.T, err error, target *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, target), "expected %s, got %v", target.Code, err)
}

func TestCreateApplicationSeedsTimelineAndDocuments(t *testing.T) {
	f := newWorkflowFixture(t)

	detail, err := f.svc.Create(context.Background(), institutionActor, dto.CreateApplicationRequest{
		Type:      models.ApplicationTypeNewInstitution,
		Documents: []dto.DocumentInput{{Category: "land", FileName: "land.pdf"}, {Category: "building", FileName: "plan.pdf"}},
	})
	require.NoError(t, err)

	app := detail.Application
	assert.Equal(t, "AICTE/2026/000001", app.ApplicationNumber)
	assert.Equal(t, models.StatusDraft, app.Status)
	assert.Equal(t, "inst-1", app.InstitutionID)
	assert.Nil(t, app.SubmittedAt)
	require.Len(t, detail.Stages, 6)
	assert.Equal(t, models.StageCurrent, detail.Stages[0].Status)
	assert.Equal(t, "Site Inspection", detail.Stages[4].Title)
	require.Len(t, detail.Documents, 2)
	for _, doc := range detail.Documents {
		assert.Equal(t, models.DocumentPending, doc.Status)
		assert.Equal(t, app.ID, doc.ApplicationID)
	}
	assert.Equal(t, []models.WorkflowEventType{models.EventApplicationCreated}, f.events.types())

	second := f.create(t, models.ApplicationTypeEOA, 0)
	assert.Equal(t, "AICTE/2026/000002", second.ApplicationNumber)
	assert.Len(t, f.db.stagesOf(second.ID), 5)
}

func TestCreateApplicationValidation(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, institutionActor, dto.CreateApplicationRequest{Type: models.ApplicationTypeIntakeIncrease})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(ctx, institutionActor, dto.CreateApplicationRequest{Type: "franchise"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.Create(ctx, institutionActor, dto.CreateApplicationRequest{Type: models.ApplicationTypeEOA, InstitutionID: "inst-2"})
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Create(ctx, evaluatorActor, dto.CreateApplicationRequest{Type: models.ApplicationTypeEOA})
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Create(ctx, adminActor, dto.CreateApplicationRequest{Type: models.ApplicationTypeEOA})
	requireAppError(t, err, appErrors.ErrValidation)

	detail, err := f.svc.Create(ctx, adminActor, dto.CreateApplicationRequest{Type: models.ApplicationTypeEOA, InstitutionID: "inst-9"})
	require.NoError(t, err)
	assert.Equal(t, "inst-9", detail.Application.InstitutionID)
}

func TestSubmitMovesDraftAndTimeline(t *testing.T) {
	f := newWorkflowFixture(t)
	app := f.create(t, models.ApplicationTypeEOA, 1)
	f.tick(time.Hour)

	submitted, err := f.svc.Submit(context.Background(), institutionActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, f.now, *submitted.SubmittedAt)
	assert.Equal(t, 2, submitted.Version)

	stages := f.db.stagesOf(app.ID)
	assert.Equal(t, models.StageCompleted, stages[0].Status)
	assert.Equal(t, models.StageCurrent, stages[1].Status)
	assert.Equal(t, "Initial Scrutiny", stages[1].Title)
	require.NoError(t, CheckStageOrder(stages))

	history, err := f.svc.History(context.Background(), institutionActor, app.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusDraft, history[0].FromStatus)
	assert.Equal(t, models.StatusSubmitted, history[0].ToStatus)
	assert.Equal(t, string(TriggerSubmit), history[0].Trigger)
	assert.False(t, history[0].Forced)

	_, err = f.svc.Submit(context.Background(), institutionActor, app.ID)
	requireAppError(t, err, appErrors.ErrInvalidState)
}

func TestSubmitRejectsOutsiders(t *testing.T) {
	f := newWorkflowFixture(t)
	app := f.create(t, models.ApplicationTypeEOA, 0)

	_, err := f.svc.Submit(context.Background(), otherInstitution, app.ID)
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Submit(context.Background(), evaluatorActor, app.ID)
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Submit(context.Background(), adminActor, "missing")
	requireAppError(t, err, appErrors.ErrNotFound)

	current, err := f.svc.Get(context.Background(), adminActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, current.Application.Status)
}

func TestSubmitReportsVersionConflict(t *testing.T) {
	f := newWorkflowFixture(t)
	app := f.create(t, models.ApplicationTypeEOA, 0)
	f.db.failStatusUpdates = 1

	_, err := f.svc.Submit(context.Background(), institutionActor, app.ID)
	requireAppError(t, err, appErrors.ErrConflict)

	stored, err := f.svc.Get(context.Background(), adminActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Application.Status)
	assert.Equal(t, models.StageCurrent, stored.Stages[0].Status)
}

func TestAdvanceReviewThroughScrutinyAndVerification(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app := f.create(t, models.ApplicationTypeEOA, 0)
	_, err := f.svc.Submit(ctx, institutionActor, app.ID)
	require.NoError(t, err)

	_, err = f.svc.AdvanceReview(ctx, institutionActor, app.ID, dto.AdvanceReviewRequest{Status: models.StatusScrutiny})
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.AdvanceReview(ctx, adminActor, app.ID, dto.AdvanceReviewRequest{Status: models.StatusApproved})
	requireAppError(t, err, appErrors.ErrValidation)

	scrutiny, err := f.svc.AdvanceReview(ctx, adminActor, app.ID, dto.AdvanceReviewRequest{Status: models.StatusScrutiny})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScrutiny, scrutiny.Status)
	assert.Equal(t, "Initial Scrutiny", CurrentStageTitle(f.db.stagesOf(app.ID)))

	verifying, err := f.svc.AdvanceReview(ctx, adminActor, app.ID, dto.AdvanceReviewRequest{Status: models.StatusDocumentVerification})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocumentVerification, verifying.Status)
	stages := f.db.stagesOf(app.ID)
	assert.Equal(t, "Document Verification", CurrentStageTitle(stages))
	require.NoError(t, CheckStageOrder(stages))

	_, err = f.svc.AdvanceReview(ctx, adminActor, app.ID, dto.AdvanceReviewRequest{Status: models.StatusScrutiny})
	requireAppError(t, err, appErrors.ErrInvalidState)
}

func TestAssignEvaluatorOpensEvaluationStage(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app := f.create(t, models.ApplicationTypeEOA, 0)
	_, err := f.svc.Submit(ctx, institutionActor, app.ID)
	require.NoError(t, err)

	deadline := f.now.Add(10 * 24 * time.Hour)
	res, err := f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1", Priority: models.PriorityHigh, Deadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderEvaluation, res.Application.Status)
	assert.Equal(t, "eval-1", res.Assignment.EvaluatorID)
	assert.Equal(t, "admin-1", res.Assignment.AssignedBy)
	assert.Equal(t, models.PriorityHigh, res.Assignment.Priority)
	assert.True(t, res.Assignment.Open())

	stages := f.db.stagesOf(app.ID)
	require.NoError(t, CheckStageOrder(stages))
	assert.Equal(t, models.StageCompleted, stages[1].Status)
	assert.Equal(t, models.StageCompleted, stages[2].Status)
	assert.Equal(t, models.StageCurrent, stages[3].Status)
	require.NotNil(t, stages[3].Assignee)
	assert.Equal(t, "Dr. Meera Rao", *stages[3].Assignee)

	again, err := f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1"})
	require.NoError(t, err)
	assert.NotEqual(t, res.Assignment.ID, again.Assignment.ID)
	assert.Equal(t, models.PriorityMedium, again.Assignment.Priority)
	assert.Equal(t, res.Application.Version, again.Application.Version)

	history, err := f.svc.History(ctx, adminActor, app.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAssignEvaluatorRejectsInvalidEvaluators(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app := f.create(t, models.ApplicationTypeEOA, 0)
	_, err := f.svc.Submit(ctx, institutionActor, app.ID)
	require.NoError(t, err)

	_, err = f.svc.AssignEvaluator(ctx, institutionActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1"})
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "ghost"})
	requireAppError(t, err, appErrors.ErrNotFound)

	_, err = f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-3"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "admin-1"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1", Priority: "urgent"})
	requireAppError(t, err, appErrors.ErrValidation)

	draft := f.create(t, models.ApplicationTypeEOA, 0)
	_, err = f.svc.AssignEvaluator(ctx, adminActor, draft.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1"})
	requireAppError(t, err, appErrors.ErrInvalidState)

	assignments, err := f.db.Stores().Assignments.List(ctx, models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestRecordEvaluationApproveClosesApplication(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, assignmentID := f.underEvaluation(t, models.ApplicationTypeNewInstitution)

	notes := "  Labs inspected  "
	res, err := f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{
		Score:          score(86.5),
		Recommendation: " Approve ",
		Comments:       "meets norms",
		SiteVisitNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, res.Application.Status)
	assert.Equal(t, models.RecommendationApprove, res.Evaluation.Recommendation)
	require.NotNil(t, res.Evaluation.SiteVisitNotes)
	assert.Equal(t, "Labs inspected", *res.Evaluation.SiteVisitNotes)
	assert.False(t, res.Assignment.Open())

	for _, stage := range f.db.stagesOf(app.ID) {
		assert.Equal(t, models.StageCompleted, stage.Status, stage.Title)
		assert.NotNil(t, stage.CompletedAt)
	}

	history, err := f.svc.History(ctx, adminActor, app.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, models.StatusApproved, last.ToStatus)
	assert.Equal(t, string(TriggerApprove), last.Trigger)
	assert.Equal(t, "eval-1", last.ActorID)

	_, err = f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(10), Recommendation: "reject"})
	requireAppError(t, err, appErrors.ErrInvalidState)
}

func TestRecordEvaluationReviseKeepsEvaluationOpen(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, assignmentID := f.underEvaluation(t, models.ApplicationTypeEOA)
	before := f.db.stagesOf(app.ID)

	res, err := f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(55), Recommendation: "revise"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderEvaluation, res.Application.Status)
	assert.False(t, res.Assignment.Open())
	assert.Equal(t, before, f.db.stagesOf(app.ID))

	second, err := f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-2"})
	require.NoError(t, err)
	f.tick(time.Hour)

	rejected, err := f.svc.RecordEvaluation(ctx, otherEvaluator, second.Assignment.ID, dto.RecordEvaluationRequest{Score: score(20), Recommendation: "reject"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Application.Status)

	detail, err := f.svc.Get(ctx, adminActor, app.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Evaluations, 2)
	latest, ok := LatestEvaluation(detail.Evaluations)
	require.True(t, ok)
	assert.Equal(t, models.RecommendationReject, latest.Recommendation)
}

func TestRecordEvaluationValidatesInput(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	_, assignmentID := f.underEvaluation(t, models.ApplicationTypeEOA)

	_, err := f.svc.RecordEvaluation(ctx, otherEvaluator, assignmentID, dto.RecordEvaluationRequest{Score: score(80), Recommendation: "approve"})
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(101), Recommendation: "approve"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(-1), Recommendation: "approve"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(70), Recommendation: "defer"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Recommendation: "approve"})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.RecordEvaluation(ctx, evaluatorActor, "missing", dto.RecordEvaluationRequest{Score: score(70), Recommendation: "approve"})
	requireAppError(t, err, appErrors.ErrNotFound)

	res, err := f.svc.RecordEvaluation(ctx, adminActor, assignmentID, dto.RecordEvaluationRequest{Score: score(0), Recommendation: "APPROVE"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, res.Application.Status)
}

func TestConcurrentDecisionsProduceOneTransition(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, first := f.underEvaluation(t, models.ApplicationTypeEOA)

	assignmentIDs := []string{first}
	for i := 0; i < 7; i++ {
		res, err := f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1"})
		require.NoError(t, err)
		assignmentIDs = append(assignmentIDs, res.Assignment.ID)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i, id := range assignmentIDs {
		rec := "approve"
		if i%2 == 1 {
			rec = "reject"
		}
		wg.Add(1)
		go func(id, rec string) {
			defer wg.Done()
			_, err := f.svc.RecordEvaluation(ctx, evaluatorActor, id, dto.RecordEvaluationRequest{Score: score(75), Recommendation: rec})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if appErrors.Is(err, appErrors.ErrInvalidState) {
				rejected++
			}
		}(id, rec)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, len(assignmentIDs)-1, rejected)

	history, err := f.svc.History(ctx, adminActor, app.ID)
	require.NoError(t, err)
	terminal := 0
	for _, change := range history {
		if change.ToStatus.Terminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)

	detail, err := f.svc.Get(ctx, adminActor, app.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Evaluations, 1)
	assert.True(t, detail.Application.Status.Terminal())
}

func TestConcurrentEvaluationsOfOneAssignment(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, assignmentID := f.underEvaluation(t, models.ApplicationTypeNewInstitution)

	const callers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		rec := "approve"
		if i%2 == 1 {
			rec = "reject"
		}
		wg.Add(1)
		go func(rec string) {
			defer wg.Done()
			_, err := f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(64), Recommendation: rec})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if appErrors.Is(err, appErrors.ErrInvalidState) {
				rejected++
			}
		}(rec)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, rejected)

	detail, err := f.svc.Get(ctx, adminActor, app.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Evaluations, 1)
	assert.True(t, detail.Application.Status.Terminal())
	require.Len(t, detail.Assignments, 1)
	assert.False(t, detail.Assignments[0].Open())

	stages := f.db.stagesOf(app.ID)
	require.NoError(t, CheckStageOrder(stages))
	for _, stage := range stages {
		assert.Equal(t, models.StageCompleted, stage.Status)
	}
}

func TestDuplicateAssignmentsCompleteIndependently(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, first := f.underEvaluation(t, models.ApplicationTypeEOA)

	second, err := f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-1"})
	require.NoError(t, err)
	require.NotEqual(t, first, second.Assignment.ID)

	res, err := f.svc.RecordEvaluation(ctx, evaluatorActor, first, dto.RecordEvaluationRequest{Score: score(58), Recommendation: "revise"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderEvaluation, res.Application.Status)

	assignments := f.db.Stores().Assignments
	done, err := assignments.GetByID(ctx, first)
	require.NoError(t, err)
	assert.False(t, done.Open())
	open, err := assignments.GetByID(ctx, second.Assignment.ID)
	require.NoError(t, err)
	assert.True(t, open.Open())
	assert.Nil(t, open.CompletedAt)
}

func TestSetStatusOverridesWithAudit(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, assignmentID := f.underEvaluation(t, models.ApplicationTypeEOA)
	_, err := f.svc.RecordEvaluation(ctx, evaluatorActor, assignmentID, dto.RecordEvaluationRequest{Score: score(90), Recommendation: "approve"})
	require.NoError(t, err)
	stagesBefore := f.db.stagesOf(app.ID)

	_, err = f.svc.SetStatus(ctx, adminActor, app.ID, dto.SetStatusRequest{Status: models.StatusScrutiny})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.SetStatus(ctx, institutionActor, app.ID, dto.SetStatusRequest{Status: models.StatusScrutiny, Reason: "appeal"})
	requireAppError(t, err, appErrors.ErrForbidden)

	_, err = f.svc.SetStatus(ctx, adminActor, app.ID, dto.SetStatusRequest{Status: "archived", Reason: "appeal"})
	requireAppError(t, err, appErrors.ErrValidation)

	reopened, err := f.svc.SetStatus(ctx, adminActor, app.ID, dto.SetStatusRequest{Status: models.StatusScrutiny, Reason: " appeal upheld "})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScrutiny, reopened.Status)
	assert.Equal(t, stagesBefore, f.db.stagesOf(app.ID))

	history, err := f.svc.History(ctx, adminActor, app.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.True(t, last.Forced)
	assert.Equal(t, string(TriggerOverride), last.Trigger)
	assert.Equal(t, models.StatusApproved, last.FromStatus)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "appeal upheld", *last.Reason)

	same, err := f.svc.SetStatus(ctx, adminActor, app.ID, dto.SetStatusRequest{Status: models.StatusScrutiny, Reason: "again"})
	require.NoError(t, err)
	assert.Equal(t, reopened.Version, same.Version)
	after, err := f.svc.History(ctx, adminActor, app.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(history))
}

func TestSetStatusStampsSubmissionOnDraft(t *testing.T) {
	f := newWorkflowFixture(t)
	app := f.create(t, models.ApplicationTypeEOA, 0)

	res, err := f.svc.SetStatus(context.Background(), adminActor, app.ID, dto.SetStatusRequest{Status: models.StatusDocumentVerification, Reason: "migrated from paper"})
	require.NoError(t, err)
	require.NotNil(t, res.SubmittedAt)
	assert.Equal(t, models.StageCurrent, f.db.stagesOf(app.ID)[0].Status)
}

func TestAdvanceStageMovesSiteInspection(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, _ := f.underEvaluation(t, models.ApplicationTypeNewInstitution)

	_, err := f.svc.AdvanceStage(ctx, institutionActor, app.ID, dto.AdvanceStageRequest{Title: "Expert Evaluation", Status: models.StageCompleted})
	requireAppError(t, err, appErrors.ErrForbidden)

	stages, err := f.svc.AdvanceStage(ctx, adminActor, app.ID, dto.AdvanceStageRequest{Title: "expert evaluation", Status: models.StageCompleted})
	require.NoError(t, err)
	assert.Equal(t, "Site Inspection", CurrentStageTitle(stages))
	require.NoError(t, CheckStageOrder(f.db.stagesOf(app.ID)))

	_, err = f.svc.AdvanceStage(ctx, adminActor, app.ID, dto.AdvanceStageRequest{Title: "Expert Evaluation", Status: models.StageCurrent})
	requireAppError(t, err, appErrors.ErrInvalidState)

	_, err = f.svc.AdvanceStage(ctx, adminActor, app.ID, dto.AdvanceStageRequest{Title: "Audit", Status: models.StageCurrent})
	requireAppError(t, err, appErrors.ErrNotFound)

	detail, err := f.svc.Get(ctx, adminActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderEvaluation, detail.Application.Status)
}

func TestReassignmentLabelsOpenStageOnly(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	app, _ := f.underEvaluation(t, models.ApplicationTypeNewInstitution)

	_, err := f.svc.AdvanceStage(ctx, adminActor, app.ID, dto.AdvanceStageRequest{Title: "Expert Evaluation", Status: models.StageCompleted})
	require.NoError(t, err)
	_, err = f.svc.AssignEvaluator(ctx, adminActor, app.ID, dto.AssignEvaluatorRequest{EvaluatorID: "eval-2"})
	require.NoError(t, err)

	stages := f.db.stagesOf(app.ID)
	require.NoError(t, CheckStageOrder(stages))
	require.NotNil(t, stages[3].Assignee)
	assert.Equal(t, "Dr. Meera Rao", *stages[3].Assignee)
	assert.Equal(t, models.StageCurrent, stages[4].Status)
	require.NotNil(t, stages[4].Assignee)
	assert.Equal(t, "Prof. Arjun Das", *stages[4].Assignee)
}

func TestListAndGetAreScopedByRole(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	assigned, _ := f.underEvaluation(t, models.ApplicationTypeEOA)
	f.tick(time.Minute)
	unassigned := f.create(t, models.ApplicationTypeEOA, 0)
	f.tick(time.Minute)
	foreign, err := f.svc.Create(ctx, adminActor, dto.CreateApplicationRequest{Type: models.ApplicationTypeEOA, InstitutionID: "inst-2"})
	require.NoError(t, err)

	all, page, err := f.svc.List(ctx, adminActor, dto.ApplicationQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, foreign.Application.ID, all[0].ID)

	own, _, err := f.svc.List(ctx, institutionActor, dto.ApplicationQuery{})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	drafts, _, err := f.svc.List(ctx, institutionActor, dto.ApplicationQuery{Status: []models.ApplicationStatus{models.StatusDraft}})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, unassigned.ID, drafts[0].ID)

	evaluatorView, _, err := f.svc.List(ctx, evaluatorActor, dto.ApplicationQuery{})
	require.NoError(t, err)
	require.Len(t, evaluatorView, 1)
	assert.Equal(t, assigned.ID, evaluatorView[0].ID)

	paged, page, err := f.svc.List(ctx, adminActor, dto.ApplicationQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	assert.Equal(t, 2, page.Page)

	_, _, err = f.svc.List(ctx, adminActor, dto.ApplicationQuery{Status: []models.ApplicationStatus{"lost"}})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = f.svc.Get(ctx, otherInstitution, assigned.ID)
	requireAppError(t, err, appErrors.ErrForbidden)
	_, err = f.svc.Get(ctx, evaluatorActor, unassigned.ID)
	requireAppError(t, err, appErrors.ErrForbidden)
	_, err = f.svc.Get(ctx, adminActor, "missing")
	requireAppError(t, err, appErrors.ErrNotFound)

	byNumber, err := f.svc.GetByNumber(ctx, evaluatorActor, assigned.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, assigned.ID, byNumber.Application.ID)
	assert.Len(t, byNumber.Assignments, 1)
}

func TestFormatApplicationNumber(t *testing.T) {
	assert.Equal(t, "AICTE/2026/000042", FormatApplicationNumber("AICTE", 2026, 42))
	assert.Equal(t, "NBA/2027/1234567", FormatApplicationNumber("NBA", 2027, 1234567))
}
