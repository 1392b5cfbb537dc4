package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

const assignmentColumns = `id, application_id, evaluator_id, assigned_by, priority, deadline, completed_at, created_at`

// AssignmentRepository persists evaluator assignments.
type AssignmentRepository struct {
	db sqlx.ExtContext
}

// NewAssignmentRepository constructs the repository on a DB or transaction.
func NewAssignmentRepository(db sqlx.ExtContext) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create always inserts a new assignment row.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.EvaluatorAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.Priority == "" {
		assignment.Priority = models.PriorityMedium
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluator_assignments (id, application_id, evaluator_id, assigned_by, priority, deadline, completed_at, created_at)
	VALUES (:id, :application_id, :evaluator_id, :assigned_by, :priority, :deadline, :completed_at, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// GetByID fetches an assignment by identifier.
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.EvaluatorAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM evaluator_assignments WHERE id = $1`
	var assignment models.EvaluatorAssignment
	if err := sqlx.GetContext(ctx, r.db, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List returns assignments matching the filter, earliest deadline first.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.EvaluatorAssignment, error) {
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 4)
	if filter.ApplicationID != "" {
		args = append(args, filter.ApplicationID)
		conditions = append(conditions, fmt.Sprintf("application_id = $%d", len(args)))
	}
	if len(filter.ApplicationIDs) > 0 {
		args = append(args, pq.Array(filter.ApplicationIDs))
		conditions = append(conditions, fmt.Sprintf("application_id = ANY($%d)", len(args)))
	}
	if filter.EvaluatorID != "" {
		args = append(args, filter.EvaluatorID)
		conditions = append(conditions, fmt.Sprintf("evaluator_id = $%d", len(args)))
	}
	if filter.OpenOnly {
		conditions = append(conditions, "completed_at IS NULL")
	}

	query := `SELECT ` + assignmentColumns + ` FROM evaluator_assignments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY deadline NULLS LAST, created_at, id"

	var assignments []models.EvaluatorAssignment
	if err := sqlx.SelectContext(ctx, r.db, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Complete stamps the completion time on an open assignment. It reports
// false without error when the assignment was already completed.
func (r *AssignmentRepository) Complete(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE evaluator_assignments SET completed_at = $1 WHERE id = $2 AND completed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("complete assignment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete assignment rows: %w", err)
	}
	return rows > 0, nil
}
