package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/internal/repository"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
)

// scopeFilter restricts application queries to what the actor may see.
func scopeFilter(actor models.Actor) (models.ApplicationFilter, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return models.ApplicationFilter{}, nil
	case models.RoleInstitution:
		if actor.InstitutionID == "" {
			return models.ApplicationFilter{}, appErrors.ErrForbidden
		}
		return models.ApplicationFilter{InstitutionID: actor.InstitutionID}, nil
	case models.RoleEvaluator:
		return models.ApplicationFilter{EvaluatorID: actor.UserID}, nil
	default:
		return models.ApplicationFilter{}, appErrors.ErrUnauthorized
	}
}

// authorizeOwner allows admins and the owning institution.
func authorizeOwner(actor models.Actor, app *models.Application) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == models.RoleInstitution && actor.InstitutionID != "" && actor.InstitutionID == app.InstitutionID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "application belongs to another institution")
}

// authorizeView additionally allows evaluators assigned to the application.
func authorizeView(ctx context.Context, assignments repository.AssignmentStore, actor models.Actor, app *models.Application) error {
	if actor.Role != models.RoleEvaluator {
		return authorizeOwner(actor, app)
	}
	assigned, err := isAssigned(ctx, assignments, actor.UserID, app.ID)
	if err != nil {
		return err
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrForbidden, "evaluator is not assigned to this application")
	}
	return nil
}

func isAssigned(ctx context.Context, assignments repository.AssignmentStore, evaluatorID, applicationID string) (bool, error) {
	list, err := assignments.List(ctx, models.AssignmentFilter{ApplicationID: applicationID, EvaluatorID: evaluatorID})
	if err != nil {
		return false, internalError(err, "failed to load assignments")
	}
	return len(list) > 0, nil
}

func loadEvaluator(ctx context.Context, users repository.UserStore, id string) (*models.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "evaluator not found", "failed to load evaluator")
	}
	if user.Role != models.RoleEvaluator {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not an evaluator")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "evaluator account is inactive")
	}
	return user, nil
}

// txError converts an error escaping a unit of work into a typed error.
// sql.ErrNoRows at that level means the locked application was missing.
func txError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	return internalError(err, message)
}

func notFoundOr(err error, notFound, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
