package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// StatusHistoryRepository persists the application status audit trail.
type StatusHistoryRepository struct {
	db sqlx.ExtContext
}

// NewStatusHistoryRepository constructs the repository on a DB or transaction.
func NewStatusHistoryRepository(db sqlx.ExtContext) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

// Create appends a status change.
func (r *StatusHistoryRepository) Create(ctx context.Context, change *models.StatusChange) error {
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO application_status_history (id, application_id, from_status, to_status, trigger, actor_id, reason, forced, created_at)
	VALUES (:id, :application_id, :from_status, :to_status, :trigger, :actor_id, :reason, :forced, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, change); err != nil {
		return fmt.Errorf("create status change: %w", err)
	}
	return nil
}

// ListByApplication returns an application's status changes oldest first.
func (r *StatusHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.StatusChange, error) {
	const query = `SELECT id, application_id, from_status, to_status, trigger, actor_id, reason, forced, created_at
	FROM application_status_history WHERE application_id = $1 ORDER BY created_at, id`
	var changes []models.StatusChange
	if err := sqlx.SelectContext(ctx, r.db, &changes, query, applicationID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return changes, nil
}
