package repository

import (
	"context"
	"time"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// ApplicationStore persists applications and their numbering sequence.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetByNumber(ctx context.Context, number string) (*models.Application, error)
	GetForUpdate(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	UpdateStatus(ctx context.Context, params UpdateApplicationStatusParams) error
	NextSequence(ctx context.Context, year int) (int, error)
}

// DocumentStore persists document ledger entries.
type DocumentStore interface {
	CreateBatch(ctx context.Context, docs []models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByApplication(ctx context.Context, applicationID string) ([]models.Document, error)
	UpdateReview(ctx context.Context, params ReviewDocumentParams) error
	CountByApplications(ctx context.Context, applicationIDs []string) ([]models.DocumentCounts, error)
}

// TimelineStore persists timeline stages.
type TimelineStore interface {
	CreateBatch(ctx context.Context, stages []models.TimelineStage) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.TimelineStage, error)
	ListByApplications(ctx context.Context, applicationIDs []string) ([]models.TimelineStage, error)
	Update(ctx context.Context, stage *models.TimelineStage) error
}

// AssignmentStore persists evaluator assignments.
type AssignmentStore interface {
	Create(ctx context.Context, assignment *models.EvaluatorAssignment) error
	GetByID(ctx context.Context, id string) (*models.EvaluatorAssignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.EvaluatorAssignment, error)
	Complete(ctx context.Context, id string, at time.Time) (bool, error)
}

// EvaluationStore persists evaluation records.
type EvaluationStore interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.Evaluation, error)
	// LatestByApplications limits the search to evaluatorID's evaluations when it is set.
	LatestByApplications(ctx context.Context, applicationIDs []string, evaluatorID string) ([]models.Evaluation, error)
}

// StatusHistoryStore persists the status change audit trail.
type StatusHistoryStore interface {
	Create(ctx context.Context, change *models.StatusChange) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.StatusChange, error)
}

// UserStore reads portal accounts.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Stores groups the stores bound to one connection or transaction.
type Stores struct {
	Applications ApplicationStore
	Documents    DocumentStore
	Timeline     TimelineStore
	Assignments  AssignmentStore
	Evaluations  EvaluationStore
	History      StatusHistoryStore
	Users        UserStore
}
