package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// TranscriptRepository defines the interface for voice transcript data access
type TranscriptRepository interface {
	// Create persists a new transcript
	Create(ctx context.Context, transcript *entities.VoiceTranscript) error

	// FindByID finds a transcript by ID; returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceTranscript, error)

	// FindLatestPendingByPhone returns the most recently created pending
	// transcript for a phone number, or nil when none exists
	FindLatestPendingByPhone(ctx context.Context, phoneNumber string) (*entities.VoiceTranscript, error)

	// Update persists transcript mutations
	Update(ctx context.Context, transcript *entities.VoiceTranscript) error

	// ListByUserIDs returns transcripts owned by any of the given users,
	// newest first
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID, limit, offset int) ([]*entities.VoiceTranscript, error)
}
