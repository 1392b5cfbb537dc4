package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

// DocumentService is the document ledger: reviews and verification progress.
type DocumentService struct {
	reads  repository.Stores
	events WorkflowEventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewDocumentService constructs the ledger service.
func NewDocumentService(reads repository.Stores, events WorkflowEventPublisher, logger *zap.Logger) *DocumentService {
	if events == nil {
		events = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{reads: reads, events: events, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Review moves a pending document to approved or rejected.
func (s *DocumentService) Review(ctx context.Context, actor models.Actor, documentID string, req dto.ReviewDocumentRequest) (*models.Document, error) {
	if req.Status != models.DocumentApproved && req.Status != models.DocumentRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}
	doc, err := s.reads.Documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, notFoundOr(err, "document not found", "failed to load document")
	}
	app, err := s.reads.Applications.GetByID(ctx, doc.ApplicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found", "failed to load application")
	}
	if err := s.authorizeReview(ctx, actor, app); err != nil {
		return nil, err
	}
	if doc.Status.Reviewed() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("document already %s", doc.Status))
	}

	now := s.now()
	if err := s.reads.Documents.UpdateReview(ctx, repository.ReviewDocumentParams{
		ID:         doc.ID,
		Status:     req.Status,
		ReviewedBy: actor.UserID,
		ReviewedAt: now,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document was reviewed concurrently")
		}
		return nil, internalError(err, "failed to review document")
	}

	doc.Status = req.Status
	doc.ReviewedBy = &actor.UserID
	doc.ReviewedAt = &now
	doc.UpdatedAt = now

	s.logger.Info("document reviewed",
		zap.String("document_id", doc.ID),
		zap.String("application_id", app.ID),
		zap.String("status", string(doc.Status)))
	s.events.Publish(ctx, models.WorkflowEvent{
		Type:          models.EventDocumentReviewed,
		ApplicationID: app.ID,
		InstitutionID: app.InstitutionID,
		Status:        app.Status,
		ActorID:       actor.UserID,
		OccurredAt:    now,
	})
	return doc, nil
}

// Progress reports the review-completion percentage of an application's documents.
func (s *DocumentService) Progress(ctx context.Context, actor models.Actor, applicationID string) (*models.DocumentProgress, error) {
	app, err := s.reads.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found", "failed to load application")
	}
	if err := authorizeView(ctx, s.reads.Assignments, actor, app); err != nil {
		return nil, err
	}
	counts, err := s.reads.Documents.CountByApplications(ctx, []string{app.ID})
	if err != nil {
		return nil, internalError(err, "failed to count documents")
	}
	total := models.DocumentCounts{ApplicationID: app.ID}
	for _, c := range counts {
		if c.ApplicationID == app.ID {
			total = c
		}
	}
	return &models.DocumentProgress{DocumentCounts: total, VerificationProgress: VerificationProgress(total)}, nil
}

func (s *DocumentService) authorizeReview(ctx context.Context, actor models.Actor, app *models.Application) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleEvaluator:
		assigned, err := isAssigned(ctx, s.reads.Assignments, actor.UserID, app.ID)
		if err != nil {
			return err
		}
		if assigned {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "evaluator is not assigned to this application")
	default:
		return appErrors.ErrForbidden
	}
}

// VerificationProgress is round(100*(approved+rejected)/total), 0 without documents.
// Rejected documents count as reviewed, not as passed.
func VerificationProgress(c models.DocumentCounts) int {
	if c.Total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(c.Approved+c.Rejected) / float64(c.Total)))
}

// SumDocumentCounts adds per-application counts into one total.
func SumDocumentCounts(counts []models.DocumentCounts) models.DocumentCounts {
	var total models.DocumentCounts
	for _, c := range counts {
		total.Total += c.Total
		total.Approved += c.Approved
		total.Rejected += c.Rejected
		total.Pending += c.Pending
	}
	return total
}
