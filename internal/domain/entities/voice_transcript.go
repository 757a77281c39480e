package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptStatus represents the lifecycle state of a voice transcript
type TranscriptStatus string

const (
	TranscriptStatusPending   TranscriptStatus = "pending"   // Awaiting confirm/retake from the sender
	TranscriptStatusConfirmed TranscriptStatus = "confirmed" // Terminal: accepted, extraction stored (or null)
	TranscriptStatusRetaken   TranscriptStatus = "retaken"   // Terminal: sender asked to re-record
)

// VoiceTranscript represents one inbound voice message and its extraction state.
// Status only ever moves pending -> confirmed or pending -> retaken.
type VoiceTranscript struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	PhoneNumber string     `json:"phone_number" gorm:"type:varchar(20);not null;index"`
	Transcript  string     `json:"transcript" gorm:"type:text;not null"`
	TemplateID  *uuid.UUID `json:"template_id,omitempty" gorm:"type:uuid"`

	// ExtractedData maps template field names to extracted values.
	// Null until confirmed with a template; optional fields the model could
	// not extract map to null values inside the object.
	ExtractedData datatypes.JSONType[map[string]interface{}] `json:"extracted_data,omitempty" gorm:"type:jsonb"`
	HasExtraction bool                                       `json:"has_extraction" gorm:"default:false"`

	Status    TranscriptStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (VoiceTranscript) TableName() string {
	return "voice_transcripts"
}

// NewVoiceTranscript creates a pending transcript for an inbound voice note
func NewVoiceTranscript(phoneNumber, text string) *VoiceTranscript {
	return &VoiceTranscript{
		ID:          uuid.New(),
		PhoneNumber: phoneNumber,
		Transcript:  text,
		Status:      TranscriptStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// IsPending reports whether the transcript still awaits a confirm/retake action
func (t *VoiceTranscript) IsPending() bool {
	return t.Status == TranscriptStatusPending
}

// Confirm transitions the transcript to confirmed, attaching extraction output.
// data may be nil when no template exists or extraction failed.
func (t *VoiceTranscript) Confirm(templateID *uuid.UUID, data map[string]interface{}) error {
	if !t.IsPending() {
		return ErrTranscriptResolved
	}
	t.Status = TranscriptStatusConfirmed
	t.TemplateID = templateID
	if data != nil {
		t.ExtractedData = datatypes.NewJSONType(data)
		t.HasExtraction = true
	}
	t.UpdatedAt = time.Now()
	return nil
}

// Retake transitions the transcript to retaken
func (t *VoiceTranscript) Retake() error {
	if !t.IsPending() {
		return ErrTranscriptResolved
	}
	t.Status = TranscriptStatusRetaken
	t.UpdatedAt = time.Now()
	return nil
}
