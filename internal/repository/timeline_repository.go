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

const stageColumns = `id, application_id, position, title, phase, status, assignee, completed_at, updated_at`

// TimelineRepository persists timeline stages.
type TimelineRepository struct {
	db sqlx.ExtContext
}

// NewTimelineRepository constructs the repository on a DB or transaction.
func NewTimelineRepository(db sqlx.ExtContext) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// CreateBatch inserts the stage set of a new application.
func (r *TimelineRepository) CreateBatch(ctx context.Context, stages []models.TimelineStage) error {
	if len(stages) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range stages {
		if stages[i].ID == "" {
			stages[i].ID = uuid.NewString()
		}
		if stages[i].UpdatedAt.IsZero() {
			stages[i].UpdatedAt = now
		}
	}
	const query = `INSERT INTO timeline_stages (id, application_id, position, title, phase, status, assignee, completed_at, updated_at)
	VALUES (:id, :application_id, :position, :title, :phase, :status, :assignee, :completed_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, stages); err != nil {
		return fmt.Errorf("create timeline stages: %w", err)
	}
	return nil
}

// ListByApplication returns an application's stages in position order.
func (r *TimelineRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.TimelineStage, error) {
	query := `SELECT ` + stageColumns + ` FROM timeline_stages WHERE application_id = $1 ORDER BY position`
	var stages []models.TimelineStage
	if err := sqlx.SelectContext(ctx, r.db, &stages, query, applicationID); err != nil {
		return nil, fmt.Errorf("list timeline stages: %w", err)
	}
	return stages, nil
}

// ListByApplications returns stages for many applications ordered by application then position.
func (r *TimelineRepository) ListByApplications(ctx context.Context, applicationIDs []string) ([]models.TimelineStage, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stageColumns + ` FROM timeline_stages WHERE application_id = ANY($1) ORDER BY application_id, position`
	var stages []models.TimelineStage
	if err := sqlx.SelectContext(ctx, r.db, &stages, query, pq.Array(applicationIDs)); err != nil {
		return nil, fmt.Errorf("list timeline stages: %w", err)
	}
	return stages, nil
}

// Update writes a stage's mutable columns.
func (r *TimelineRepository) Update(ctx context.Context, stage *models.TimelineStage) error {
	if stage.UpdatedAt.IsZero() {
		stage.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE timeline_stages SET status = :status, assignee = :assignee, completed_at = :completed_at, updated_at = :updated_at
	WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, stage); err != nil {
		return fmt.Errorf("update timeline stage: %w", err)
	}
	return nil
}
