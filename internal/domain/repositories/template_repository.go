package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// TemplateRepository defines the interface for user template data access
type TemplateRepository interface {
	// Create persists a new template
	Create(ctx context.Context, template *entities.UserTemplate) error

	// FindByID finds a template by ID; returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.UserTemplate, error)

	// ListByUserID returns all templates owned by a user
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.UserTemplate, error)

	// FindDefaultByUserID returns the user's default template, or nil
	FindDefaultByUserID(ctx context.Context, userID uuid.UUID) (*entities.UserTemplate, error)

	// Update persists template mutations
	Update(ctx context.Context, template *entities.UserTemplate) error

	// Delete removes a template
	Delete(ctx context.Context, id uuid.UUID) error

	// ClearDefault unsets the default flag on all of a user's templates
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}
