package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	// FindByID finds a profile by ID; returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)

	// FindByEmail finds a profile by email; returns nil when absent
	FindByEmail(ctx context.Context, email string) (*entities.Profile, error)

	// ListRepIDsByManagerID returns the ids of all sales representatives
	// reporting to a manager
	ListRepIDsByManagerID(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
}

// PhoneMappingRepository defines the interface for phone-number-to-user lookup
type PhoneMappingRepository interface {
	// FindByPhoneNumber returns the mapping for a phone number, or nil
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.PhoneNumberMapping, error)
}
