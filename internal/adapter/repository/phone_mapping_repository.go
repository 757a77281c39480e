package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// PhoneMappingRepository handles phone-number-to-user lookups
type PhoneMappingRepository struct {
	db *gorm.DB
}

// NewPhoneMappingRepository creates a new phone mapping repository
func NewPhoneMappingRepository(db *gorm.DB) *PhoneMappingRepository {
	return &PhoneMappingRepository{db: db}
}

// FindByPhoneNumber retrieves the mapping for a phone number
func (r *PhoneMappingRepository) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.PhoneNumberMapping, error) {
	var mapping entities.PhoneNumberMapping
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}
