package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// TemplateRepository handles user template data operations
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create persists a new template
func (r *TemplateRepository) Create(ctx context.Context, template *entities.UserTemplate) error {
	if template == nil {
		return errors.New("template cannot be nil")
	}
	return r.db.WithContext(ctx).Create(template).Error
}

// FindByID retrieves a template by ID
func (r *TemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.UserTemplate, error) {
	var template entities.UserTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// ListByUserID retrieves all templates owned by a user
func (r *TemplateRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.UserTemplate, error) {
	var templates []*entities.UserTemplate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// FindDefaultByUserID retrieves the user's default template
func (r *TemplateRepository) FindDefaultByUserID(ctx context.Context, userID uuid.UUID) (*entities.UserTemplate, error) {
	var template entities.UserTemplate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		Order("updated_at DESC").
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// Update persists template mutations
func (r *TemplateRepository) Update(ctx context.Context, template *entities.UserTemplate) error {
	if template == nil {
		return errors.New("template cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.UserTemplate{}).
		Where("id = ?", template.ID).
		Save(template).Error
}

// Delete removes a template
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.UserTemplate{}, id).Error
}

// ClearDefault unsets the default flag on all of a user's templates
func (r *TemplateRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.UserTemplate{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
