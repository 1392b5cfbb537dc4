package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

const documentColumns = `id, application_id, category, status, file_name, file_url, mime_type, size_bytes,
       reviewed_by, reviewed_at, created_at, updated_at`

// DocumentRepository persists the document ledger.
type DocumentRepository struct {
	db sqlx.ExtContext
}

// NewDocumentRepository constructs the repository on a DB or transaction.
func NewDocumentRepository(db sqlx.ExtContext) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateBatch inserts the initial document set of an application.
func (r *DocumentRepository) CreateBatch(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
		if docs[i].Status == "" {
			docs[i].Status = models.DocumentPending
		}
		if docs[i].CreatedAt.IsZero() {
			docs[i].CreatedAt = now
		}
		docs[i].UpdatedAt = docs[i].CreatedAt
	}
	const query = `INSERT INTO application_documents
	(id, application_id, category, status, file_name, file_url, mime_type, size_bytes, reviewed_by, reviewed_at, created_at, updated_at)
	VALUES (:id, :application_id, :category, :status, :file_name, :file_url, :mime_type, :size_bytes, :reviewed_by, :reviewed_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, docs); err != nil {
		return fmt.Errorf("create documents: %w", err)
	}
	return nil
}

// GetByID fetches a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM application_documents WHERE id = $1`
	var doc models.Document
	if err := sqlx.GetContext(ctx, r.db, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByApplication returns an application's documents in upload order.
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM application_documents WHERE application_id = $1 ORDER BY created_at, id`
	var docs []models.Document
	if err := sqlx.SelectContext(ctx, r.db, &docs, query, applicationID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ReviewDocumentParams captures a review decision.
type ReviewDocumentParams struct {
	ID         string
	Status     models.DocumentStatus
	ReviewedBy string
	ReviewedAt time.Time
}

// UpdateReview moves a pending document to its reviewed status.
// It returns sql.ErrNoRows when the document is missing or already reviewed.
func (r *DocumentRepository) UpdateReview(ctx context.Context, params ReviewDocumentParams) error {
	const query = `UPDATE application_documents SET status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $3
	WHERE id = $4 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, params.Status, params.ReviewedBy, params.ReviewedAt, params.ID)
	if err != nil {
		return fmt.Errorf("review document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("review document rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByApplications aggregates document statuses per application.
func (r *DocumentRepository) CountByApplications(ctx context.Context, applicationIDs []string) ([]models.DocumentCounts, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT application_id,
       COUNT(*) AS total,
       COUNT(*) FILTER (WHERE status = 'approved') AS approved,
       COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
       COUNT(*) FILTER (WHERE status = 'pending') AS pending
	FROM application_documents
	WHERE application_id = ANY($1)
	GROUP BY application_id`
	var counts []models.DocumentCounts
	if err := sqlx.SelectContext(ctx, r.db, &counts, query, pq.Array(applicationIDs)); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	return counts, nil
}
