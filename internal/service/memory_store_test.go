package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
)

// memState is a snapshot of every table the workflow touches.
type memState struct {
	apps        map[string]models.Application
	seq         map[int]int
	docs        map[string]models.Document
	stages      map[string]models.TimelineStage
	assignments map[string]models.EvaluatorAssignment
	evaluations []models.Evaluation
	history     []models.StatusChange
	users       map[string]models.User
	nextID      int
}

func newMemState() *memState {
	return &memState{
		apps:        map[string]models.Application{},
		seq:         map[int]int{},
		docs:        map[string]models.Document{},
		stages:      map[string]models.TimelineStage{},
		assignments: map[string]models.EvaluatorAssignment{},
		users:       map[string]models.User{},
	}
}

func (s *memState) clone() *memState {
	out := newMemState()
	for k, v := range s.apps {
		out.apps[k] = v
	}
	for k, v := range s.seq {
		out.seq[k] = v
	}
	for k, v := range s.docs {
		out.docs[k] = v
	}
	for k, v := range s.stages {
		out.stages[k] = v
	}
	for k, v := range s.assignments {
		out.assignments[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	out.evaluations = append(out.evaluations, s.evaluations...)
	out.history = append(out.history, s.history...)
	out.nextID = s.nextID
	return out
}

func (s *memState) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%04d", prefix, s.nextID)
}

// memoryDB is an in-memory unit of work. Transactions run one at a time on
// a copy of the state which replaces the live state on success.
type memoryDB struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *memState

	// failStatusUpdates makes the next n status updates miss their version guard.
	failStatusUpdates int
	commits           int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{state: newMemState()}
}

func (db *memoryDB) Stores() repository.Stores {
	return db.bind(&memView{db: db})
}

func (db *memoryDB) bind(v *memView) repository.Stores {
	return repository.Stores{
		Applications: memApplications{v},
		Documents:    memDocuments{v},
		Timeline:     memTimeline{v},
		Assignments:  memAssignments{v},
		Evaluations:  memEvaluations{v},
		History:      memHistory{v},
		Users:        memUsers{v},
	}
}

func (db *memoryDB) WithinTx(ctx context.Context, fn func(s repository.Stores) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	working := db.state.clone()
	db.mu.RUnlock()

	if err := fn(db.bind(&memView{db: db, tx: working})); err != nil {
		return err
	}
	db.mu.Lock()
	db.state = working
	db.commits++
	db.mu.Unlock()
	return nil
}

func (db *memoryDB) WithinApplicationTx(ctx context.Context, applicationID string, fn func(s repository.Stores, app *models.Application) error) error {
	return db.WithinTx(ctx, func(s repository.Stores) error {
		app, err := s.Applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(s, app)
	})
}

func (db *memoryDB) seedUser(u models.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.state.users[u.ID] = u
}

func (db *memoryDB) snapshot() *memState {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.state.clone()
}

func (db *memoryDB) stagesOf(applicationID string) []models.TimelineStage {
	return sortedStages(db.snapshot(), applicationID)
}

type memView struct {
	db *memoryDB
	tx *memState
}

func (v *memView) read(fn func(s *memState)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.db.mu.RLock()
	defer v.db.mu.RUnlock()
	fn(v.db.state)
}

func (v *memView) write(fn func(s *memState)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	fn(v.db.state)
}

type memApplications struct{ v *memView }

func (r memApplications) Create(_ context.Context, app *models.Application) error {
	var err error
	r.v.write(func(s *memState) {
		for _, existing := range s.apps {
			if existing.ApplicationNumber == app.ApplicationNumber {
				err = fmt.Errorf("duplicate application number %s", app.ApplicationNumber)
				return
			}
		}
		if app.ID == "" {
			app.ID = s.id("app")
		}
		if app.Version == 0 {
			app.Version = 1
		}
		app.UpdatedAt = app.CreatedAt
		s.apps[app.ID] = *app
	})
	return err
}

func (r memApplications) GetByID(_ context.Context, id string) (*models.Application, error) {
	var (
		app models.Application
		ok  bool
	)
	r.v.read(func(s *memState) { app, ok = s.apps[id] })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &app, nil
}

func (r memApplications) GetByNumber(_ context.Context, number string) (*models.Application, error) {
	var found *models.Application
	r.v.read(func(s *memState) {
		for _, app := range s.apps {
			if app.ApplicationNumber == number {
				a := app
				found = &a
				return
			}
		}
	})
	if found == nil {
		return nil, sql.ErrNoRows
	}
	return found, nil
}

func (r memApplications) GetForUpdate(ctx context.Context, id string) (*models.Application, error) {
	return r.GetByID(ctx, id)
}

func (r memApplications) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	all, _ := r.ListAll(ctx, filter)
	total := len(all)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return all[start:end], total, nil
}

func (r memApplications) ListAll(_ context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	var out []models.Application
	r.v.read(func(s *memState) {
		for _, app := range s.apps {
			if matchesApplication(s, app, filter) {
				out = append(out, app)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesApplication(s *memState, app models.Application, filter models.ApplicationFilter) bool {
	if filter.InstitutionID != "" && app.InstitutionID != filter.InstitutionID {
		return false
	}
	if filter.Type != "" && app.Type != filter.Type {
		return false
	}
	if len(filter.Status) > 0 {
		found := false
		for _, status := range filter.Status {
			found = found || status == app.Status
		}
		if !found {
			return false
		}
	}
	if filter.EvaluatorID != "" {
		for _, a := range s.assignments {
			if a.ApplicationID == app.ID && a.EvaluatorID == filter.EvaluatorID {
				return true
			}
		}
		return false
	}
	return true
}

func (r memApplications) UpdateStatus(_ context.Context, params repository.UpdateApplicationStatusParams) error {
	if r.v.db.failStatusUpdates > 0 {
		r.v.db.failStatusUpdates--
		return sql.ErrNoRows
	}
	var err error
	r.v.write(func(s *memState) {
		app, ok := s.apps[params.ID]
		if !ok || app.Version != params.ExpectedVersion {
			err = sql.ErrNoRows
			return
		}
		app.Status = params.Status
		if params.SubmittedAt != nil && app.SubmittedAt == nil {
			at := *params.SubmittedAt
			app.SubmittedAt = &at
		}
		app.Version++
		app.UpdatedAt = params.UpdatedAt
		s.apps[app.ID] = app
	})
	return err
}

func (r memApplications) NextSequence(_ context.Context, year int) (int, error) {
	var next int
	r.v.write(func(s *memState) {
		s.seq[year]++
		next = s.seq[year]
	})
	return next, nil
}

type memDocuments struct{ v *memView }

func (r memDocuments) CreateBatch(_ context.Context, docs []models.Document) error {
	r.v.write(func(s *memState) {
		for i := range docs {
			if docs[i].ID == "" {
				docs[i].ID = s.id("doc")
			}
			docs[i].UpdatedAt = docs[i].CreatedAt
			s.docs[docs[i].ID] = docs[i]
		}
	})
	return nil
}

func (r memDocuments) GetByID(_ context.Context, id string) (*models.Document, error) {
	var (
		doc models.Document
		ok  bool
	)
	r.v.read(func(s *memState) { doc, ok = s.docs[id] })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &doc, nil
}

func (r memDocuments) ListByApplication(_ context.Context, applicationID string) ([]models.Document, error) {
	var out []models.Document
	r.v.read(func(s *memState) {
		for _, doc := range s.docs {
			if doc.ApplicationID == applicationID {
				out = append(out, doc)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDocuments) UpdateReview(_ context.Context, params repository.ReviewDocumentParams) error {
	var err error
	r.v.write(func(s *memState) {
		doc, ok := s.docs[params.ID]
		if !ok || doc.Status != models.DocumentPending {
			err = sql.ErrNoRows
			return
		}
		reviewer := params.ReviewedBy
		at := params.ReviewedAt
		doc.Status = params.Status
		doc.ReviewedBy = &reviewer
		doc.ReviewedAt = &at
		doc.UpdatedAt = at
		s.docs[doc.ID] = doc
	})
	return err
}

func (r memDocuments) CountByApplications(_ context.Context, applicationIDs []string) ([]models.DocumentCounts, error) {
	wanted := make(map[string]bool, len(applicationIDs))
	for _, id := range applicationIDs {
		wanted[id] = true
	}
	counts := map[string]*models.DocumentCounts{}
	r.v.read(func(s *memState) {
		for _, doc := range s.docs {
			if !wanted[doc.ApplicationID] {
				continue
			}
			c, ok := counts[doc.ApplicationID]
			if !ok {
				c = &models.DocumentCounts{ApplicationID: doc.ApplicationID}
				counts[doc.ApplicationID] = c
			}
			c.Total++
			switch doc.Status {
			case models.DocumentApproved:
				c.Approved++
			case models.DocumentRejected:
				c.Rejected++
			default:
				c.Pending++
			}
		}
	})
	out := make([]models.DocumentCounts, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationID < out[j].ApplicationID })
	return out, nil
}

type memTimeline struct{ v *memView }

func (r memTimeline) CreateBatch(_ context.Context, stages []models.TimelineStage) error {
	r.v.write(func(s *memState) {
		for i := range stages {
			if stages[i].ID == "" {
				stages[i].ID = s.id("stage")
			}
			s.stages[stages[i].ID] = stages[i]
		}
	})
	return nil
}

func (r memTimeline) ListByApplication(_ context.Context, applicationID string) ([]models.TimelineStage, error) {
	var out []models.TimelineStage
	r.v.read(func(s *memState) { out = sortedStages(s, applicationID) })
	return out, nil
}

func (r memTimeline) ListByApplications(_ context.Context, applicationIDs []string) ([]models.TimelineStage, error) {
	var out []models.TimelineStage
	r.v.read(func(s *memState) {
		for _, id := range applicationIDs {
			out = append(out, sortedStages(s, id)...)
		}
	})
	return out, nil
}

func (r memTimeline) Update(_ context.Context, stage *models.TimelineStage) error {
	var err error
	r.v.write(func(s *memState) {
		if _, ok := s.stages[stage.ID]; !ok {
			err = sql.ErrNoRows
			return
		}
		s.stages[stage.ID] = *stage
	})
	return err
}

func sortedStages(s *memState, applicationID string) []models.TimelineStage {
	var out []models.TimelineStage
	for _, stage := range s.stages {
		if stage.ApplicationID == applicationID {
			out = append(out, stage)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

type memAssignments struct{ v *memView }

func (r memAssignments) Create(_ context.Context, a *models.EvaluatorAssignment) error {
	r.v.write(func(s *memState) {
		if a.ID == "" {
			a.ID = s.id("asg")
		}
		s.assignments[a.ID] = *a
	})
	return nil
}

func (r memAssignments) GetByID(_ context.Context, id string) (*models.EvaluatorAssignment, error) {
	var (
		a  models.EvaluatorAssignment
		ok bool
	)
	r.v.read(func(s *memState) { a, ok = s.assignments[id] })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (r memAssignments) List(_ context.Context, filter models.AssignmentFilter) ([]models.EvaluatorAssignment, error) {
	var wanted map[string]bool
	if len(filter.ApplicationIDs) > 0 {
		wanted = make(map[string]bool, len(filter.ApplicationIDs))
		for _, id := range filter.ApplicationIDs {
			wanted[id] = true
		}
	}
	var out []models.EvaluatorAssignment
	r.v.read(func(s *memState) {
		for _, a := range s.assignments {
			if filter.ApplicationID != "" && a.ApplicationID != filter.ApplicationID {
				continue
			}
			if wanted != nil && !wanted[a.ApplicationID] {
				continue
			}
			if filter.EvaluatorID != "" && a.EvaluatorID != filter.EvaluatorID {
				continue
			}
			if filter.OpenOnly && !a.Open() {
				continue
			}
			out = append(out, a)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAssignments) Complete(_ context.Context, id string, at time.Time) (bool, error) {
	changed := false
	r.v.write(func(s *memState) {
		a, ok := s.assignments[id]
		if !ok || a.CompletedAt != nil {
			return
		}
		completedAt := at
		a.CompletedAt = &completedAt
		s.assignments[id] = a
		changed = true
	})
	return changed, nil
}

type memEvaluations struct{ v *memView }

func (r memEvaluations) Create(_ context.Context, ev *models.Evaluation) error {
	r.v.write(func(s *memState) {
		if ev.ID == "" {
			ev.ID = s.id("eval")
		}
		s.evaluations = append(s.evaluations, *ev)
	})
	return nil
}

func (r memEvaluations) ListByApplication(_ context.Context, applicationID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	r.v.read(func(s *memState) {
		for _, ev := range s.evaluations {
			if ev.ApplicationID == applicationID {
				out = append(out, ev)
			}
		}
	})
	return out, nil
}

func (r memEvaluations) LatestByApplications(ctx context.Context, applicationIDs []string, evaluatorID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, id := range applicationIDs {
		evs, _ := r.ListByApplication(ctx, id)
		if evaluatorID != "" {
			evs = filterEvaluations(evs, evaluatorID)
		}
		if latest, ok := LatestEvaluation(evs); ok {
			out = append(out, latest)
		}
	}
	return out, nil
}

type memHistory struct{ v *memView }

func (r memHistory) Create(_ context.Context, change *models.StatusChange) error {
	r.v.write(func(s *memState) {
		if change.ID == "" {
			change.ID = s.id("hist")
		}
		s.history = append(s.history, *change)
	})
	return nil
}

func (r memHistory) ListByApplication(_ context.Context, applicationID string) ([]models.StatusChange, error) {
	var out []models.StatusChange
	r.v.read(func(s *memState) {
		for _, change := range s.history {
			if change.ApplicationID == applicationID {
				out = append(out, change)
			}
		}
	})
	return out, nil
}

type memUsers struct{ v *memView }

func (r memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	var (
		u  models.User
		ok bool
	)
	r.v.read(func(s *memState) { u, ok = s.users[id] })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

// recordingPublisher captures published workflow events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.WorkflowEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.WorkflowEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []models.WorkflowEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.WorkflowEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
