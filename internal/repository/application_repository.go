package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

const applicationColumns = `id, application_number, type, status, institution_id, course_name, course_intake,
       submitted_at, created_by, version, created_at, updated_at`

// ApplicationRepository persists approval applications.
type ApplicationRepository struct {
	db sqlx.ExtContext
}

// NewApplicationRepository constructs the repository on a DB or transaction.
func NewApplicationRepository(db sqlx.ExtContext) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application row.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.StatusDraft
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = app.CreatedAt
	if app.Version == 0 {
		app.Version = 1
	}
	const query = `INSERT INTO applications
	(id, application_number, type, status, institution_id, course_name, course_intake, submitted_at, created_by, version, created_at, updated_at)
	VALUES (:id, :application_number, :type, :status, :institution_id, :course_name, :course_intake, :submitted_at, :created_by, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetByID fetches an application by identifier.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	var app models.Application
	if err := sqlx.GetContext(ctx, r.db, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByNumber fetches an application by its human-readable number.
func (r *ApplicationRepository) GetByNumber(ctx context.Context, number string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE application_number = $1`
	var app models.Application
	if err := sqlx.GetContext(ctx, r.db, &app, query, number); err != nil {
		return nil, err
	}
	return &app, nil
}

// GetForUpdate fetches and row-locks an application. Only meaningful inside a transaction.
func (r *ApplicationRepository) GetForUpdate(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	var app models.Application
	if err := sqlx.GetContext(ctx, r.db, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns a page of applications matching the filter plus the total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	where, args := buildApplicationFilter(filter)

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM applications`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + applicationColumns + ` FROM applications` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT %d OFFSET %d", limit, offset)

	var apps []models.Application
	if err := sqlx.SelectContext(ctx, r.db, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return apps, total, nil
}

// ListAll returns every application matching the filter, ignoring pagination.
func (r *ApplicationRepository) ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	where, args := buildApplicationFilter(filter)
	query := `SELECT ` + applicationColumns + ` FROM applications` + where + ` ORDER BY created_at DESC, id`
	var apps []models.Application
	if err := sqlx.SelectContext(ctx, r.db, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list all applications: %w", err)
	}
	return apps, nil
}

func buildApplicationFilter(filter models.ApplicationFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 4)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.InstitutionID != "" {
		args = append(args, filter.InstitutionID)
		conditions = append(conditions, fmt.Sprintf("institution_id = $%d", len(args)))
	}
	if filter.EvaluatorID != "" {
		args = append(args, filter.EvaluatorID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM evaluator_assignments ea WHERE ea.application_id = applications.id AND ea.evaluator_id = $%d)", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// UpdateApplicationStatusParams groups the columns written on a status change.
type UpdateApplicationStatusParams struct {
	ID              string
	Status          models.ApplicationStatus
	SubmittedAt     *time.Time
	ExpectedVersion int
	UpdatedAt       time.Time
}

// UpdateStatus writes a new status guarded by the expected version.
// It returns sql.ErrNoRows when the row is missing or was modified concurrently.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, params UpdateApplicationStatusParams) error {
	if params.UpdatedAt.IsZero() {
		params.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE applications SET status = $1, submitted_at = COALESCE($2, submitted_at), version = version + 1, updated_at = $3
	WHERE id = $4 AND version = $5`
	res, err := r.db.ExecContext(ctx, query, params.Status, params.SubmittedAt, params.UpdatedAt, params.ID, params.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// NextSequence increments and returns the per-year application number sequence.
func (r *ApplicationRepository) NextSequence(ctx context.Context, year int) (int, error) {
	const query = `INSERT INTO application_sequences (year, last_value) VALUES ($1, 1)
	ON CONFLICT (year) DO UPDATE SET last_value = application_sequences.last_value + 1
	RETURNING last_value`
	var seq int
	if err := sqlx.GetContext(ctx, r.db, &seq, query, year); err != nil {
		return 0, fmt.Errorf("next application sequence: %w", err)
	}
	return seq, nil
}
