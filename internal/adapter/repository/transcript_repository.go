package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// TranscriptRepository handles voice transcript data operations
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Create persists a new transcript
func (r *TranscriptRepository) Create(ctx context.Context, transcript *entities.VoiceTranscript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	return r.db.WithContext(ctx).Create(transcript).Error
}

// FindByID retrieves a transcript by ID
func (r *TranscriptRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceTranscript, error) {
	var transcript entities.VoiceTranscript
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}

// FindLatestPendingByPhone retrieves the most recent pending transcript for a phone number
func (r *TranscriptRepository) FindLatestPendingByPhone(ctx context.Context, phoneNumber string) (*entities.VoiceTranscript, error) {
	var transcript entities.VoiceTranscript
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND status = ?", phoneNumber, entities.TranscriptStatusPending).
		Order("created_at DESC").
		First(&transcript).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}

// Update persists transcript mutations
func (r *TranscriptRepository) Update(ctx context.Context, transcript *entities.VoiceTranscript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.VoiceTranscript{}).
		Where("id = ?", transcript.ID).
		Save(transcript).Error
}

// ListByUserIDs retrieves transcripts owned by any of the given users, newest first
func (r *TranscriptRepository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID, limit, offset int) ([]*entities.VoiceTranscript, error) {
	if len(userIDs) == 0 {
		return []*entities.VoiceTranscript{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var transcripts []*entities.VoiceTranscript
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transcripts).Error
	if err != nil {
		return nil, err
	}
	return transcripts, nil
}
