package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

const evaluationColumns = `id, assignment_id, application_id, evaluator_id, score, comments, recommendation, site_visit_notes, created_at`

// EvaluationRepository persists evaluation records.
type EvaluationRepository struct {
	db sqlx.ExtContext
}

// NewEvaluationRepository constructs the repository on a DB or transaction.
func NewEvaluationRepository(db sqlx.ExtContext) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts an evaluation.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluations (id, assignment_id, application_id, evaluator_id, score, comments, recommendation, site_visit_notes, created_at)
	VALUES (:id, :assignment_id, :application_id, :evaluator_id, :score, :comments, :recommendation, :site_visit_notes, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// ListByApplication returns an application's evaluations oldest first.
func (r *EvaluationRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE application_id = $1 ORDER BY created_at, id`
	var evaluations []models.Evaluation
	if err := sqlx.SelectContext(ctx, r.db, &evaluations, query, applicationID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// LatestByApplications returns the most recent evaluation of each application,
// optionally restricted to one evaluator.
func (r *EvaluationRepository) LatestByApplications(ctx context.Context, applicationIDs []string, evaluatorID string) ([]models.Evaluation, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	query := `SELECT DISTINCT ON (application_id) ` + evaluationColumns + `
	FROM evaluations WHERE application_id = ANY($1)`
	args := []interface{}{pq.Array(applicationIDs)}
	if evaluatorID != "" {
		query += ` AND evaluator_id = $2`
		args = append(args, evaluatorID)
	}
	query += ` ORDER BY application_id, created_at DESC, id DESC`
	var evaluations []models.Evaluation
	if err := sqlx.SelectContext(ctx, r.db, &evaluations, query, args...); err != nil {
		return nil, fmt.Errorf("latest evaluations: %w", err)
	}
	return evaluations, nil
}
