package messaging

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/salescribe-team/salescribe/errors"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/domain/repositories"
	"github.com/salescribe-team/salescribe/internal/infrastructure/external/whatsapp"
	"github.com/salescribe-team/salescribe/internal/usecase/extraction"
)

// Messenger is the WhatsApp surface the pipeline needs
type Messenger interface {
	FetchMedia(ctx context.Context, mediaID string) ([]byte, string, error)
	SendText(ctx context.Context, to, body string) error
	// SendTemplate delivers via the pre-approved template when one is
	// configured, else plain text. Templates deliver even outside the
	// 24-hour customer service window where free-form sends fail.
	SendTemplate(ctx context.Context, to, bodyParam string) error
	SendInteractive(ctx context.Context, to, body string, buttons []whatsapp.Button) error
}

// Transcriber converts audio bytes into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Archiver stores raw voice notes for later review
type Archiver interface {
	StoreVoiceNote(ctx context.Context, mediaID string, audio []byte, contentType string) (string, error)
}

// Deduper makes webhook redelivery safe
type Deduper interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// UsageReporter records one transcription against the sender's billing
// account. Failures must not block the messaging flow.
type UsageReporter interface {
	RecordTranscription(ctx context.Context, userID uuid.UUID) error
}

// Service handles inbound WhatsApp messages end to end
type Service interface {
	ProcessVoiceMessage(ctx context.Context, messageID, from, mediaID string) error
	HandleButtonReply(ctx context.Context, messageID, from, buttonID, buttonTitle string) error
	HandleText(ctx context.Context, messageID, from, text string) error
}

type messagingService struct {
	transcriptRepo repositories.TranscriptRepository
	templateRepo   repositories.TemplateRepository
	profileRepo    repositories.ProfileRepository
	phoneRepo      repositories.PhoneMappingRepository
	messenger      Messenger
	transcriber    Transcriber
	archive        Archiver
	deduper        Deduper
	extractor      extraction.Service
	usage          UsageReporter
	logger         *zap.Logger
}

// NewService constructs the messaging service. The archive and usage
// reporter are optional; pass nil to disable them.
func NewService(
	transcriptRepo repositories.TranscriptRepository,
	templateRepo repositories.TemplateRepository,
	profileRepo repositories.ProfileRepository,
	phoneRepo repositories.PhoneMappingRepository,
	messenger Messenger,
	transcriber Transcriber,
	archive Archiver,
	deduper Deduper,
	extractor extraction.Service,
	usage UsageReporter,
	logger *zap.Logger,
) Service {
	return &messagingService{
		transcriptRepo: transcriptRepo,
		templateRepo:   templateRepo,
		profileRepo:    profileRepo,
		phoneRepo:      phoneRepo,
		messenger:      messenger,
		transcriber:    transcriber,
		archive:        archive,
		deduper:        deduper,
		extractor:      extractor,
		usage:          usage,
		logger:         logger,
	}
}

// echoLimit keeps the transcript preview inside the WhatsApp message
// body limit. Only the preview is truncated, never the stored text.
const echoLimit = 900

const (
	confirmPrefix = "confirm"
	retakePrefix  = "retake"
)

// ConfirmButtonID builds the button payload carrying the transcript id
func ConfirmButtonID(transcriptID uuid.UUID) string {
	return confirmPrefix + ":" + transcriptID.String()
}

// RetakeButtonID builds the button payload carrying the transcript id
func RetakeButtonID(transcriptID uuid.UUID) string {
	return retakePrefix + ":" + transcriptID.String()
}

// ProcessVoiceMessage runs the transcription pipeline for one inbound
// voice note: fetch audio, archive, transcribe, persist pending, echo
// back with Confirm/Retake buttons.
func (s *messagingService) ProcessVoiceMessage(ctx context.Context, messageID, from, mediaID string) error {
	if first, err := s.deduper.FirstSeen(ctx, "wa:"+messageID); err != nil {
		s.logger.Warn("dedup check failed, continuing", zap.String("message_id", messageID), zap.Error(err))
	} else if !first {
		s.logger.Info("skipping redelivered message", zap.String("message_id", messageID))
		return nil
	}

	audio, contentType, err := s.messenger.FetchMedia(ctx, mediaID)
	if err != nil {
		return apperrors.ErrMediaFetchFailed(mediaID, err)
	}

	if s.archive != nil {
		if _, err := s.archive.StoreVoiceNote(ctx, mediaID, audio, contentType); err != nil {
			// Archival is best effort
			s.logger.Warn("voice note archival failed", zap.String("media_id", mediaID), zap.Error(err))
		}
	}

	text, err := s.transcriber.Transcribe(ctx, audio, filenameFor(contentType))
	if err != nil {
		return apperrors.ErrTranscriptionFailed(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Info("empty transcription, asking for a retake", zap.String("from", from))
		return s.messenger.SendText(ctx, from, "We couldn't hear anything in that voice note. Please try recording again.")
	}

	transcript := entities.NewVoiceTranscript(from, text)
	if mapping, err := s.phoneRepo.FindByPhoneNumber(ctx, from); err != nil {
		s.logger.Warn("phone mapping lookup failed", zap.String("from", from), zap.Error(err))
	} else if mapping != nil {
		transcript.UserID = &mapping.UserID
	}

	if err := s.transcriptRepo.Create(ctx, transcript); err != nil {
		return apperrors.ErrDBQueryFailed("create transcript", err)
	}

	s.logger.Info("transcript created",
		zap.String("transcript_id", transcript.ID.String()),
		zap.String("from", from),
		zap.Bool("user_resolved", transcript.UserID != nil))

	if transcript.UserID != nil && s.usage != nil {
		if err := s.usage.RecordTranscription(ctx, *transcript.UserID); err != nil {
			s.logger.Warn("usage recording failed",
				zap.String("transcript_id", transcript.ID.String()),
				zap.Error(err))
		}
	}

	body := fmt.Sprintf("Here's your report transcript:\n\n%s\n\nConfirm to file it, or Retake to record again.", truncate(text, echoLimit))
	buttons := []whatsapp.Button{
		{ID: ConfirmButtonID(transcript.ID), Title: "Confirm"},
		{ID: RetakeButtonID(transcript.ID), Title: "Retake"},
	}
	if err := s.messenger.SendInteractive(ctx, from, body, buttons); err != nil {
		// The transcript is saved; a failed echo should not undo that.
		// Interactive sends fail outside the service window, so retry
		// through the approved template path.
		s.logger.Error("confirmation prompt send failed",
			zap.String("transcript_id", transcript.ID.String()),
			zap.Error(err))
		return s.messenger.SendTemplate(ctx, from, body)
	}
	return nil
}

// HandleButtonReply routes Confirm/Retake replies. Ids carrying a
// transcript uuid act on that exact transcript; bare ids and label
// matches fall back to the sender's newest pending transcript.
func (s *messagingService) HandleButtonReply(ctx context.Context, messageID, from, buttonID, buttonTitle string) error {
	if first, err := s.deduper.FirstSeen(ctx, "wa:"+messageID); err != nil {
		s.logger.Warn("dedup check failed, continuing", zap.String("message_id", messageID), zap.Error(err))
	} else if !first {
		return nil
	}

	action, transcriptID := parseButtonID(buttonID)
	if action == "" {
		// Fall back to a case-insensitive label match
		title := strings.ToLower(buttonTitle)
		switch {
		case strings.Contains(title, confirmPrefix):
			action = confirmPrefix
		case strings.Contains(title, retakePrefix):
			action = retakePrefix
		default:
			s.logger.Info("unmatched button reply",
				zap.String("button_id", buttonID),
				zap.String("title", buttonTitle))
			return nil
		}
	}

	transcript, err := s.resolveTranscript(ctx, from, transcriptID)
	if err != nil {
		return err
	}
	if transcript == nil {
		return s.messenger.SendText(ctx, from, "There's no report waiting for confirmation. Send a voice note to start one.")
	}
	if !transcript.IsPending() {
		s.logger.Info("reply targeted a resolved transcript",
			zap.String("transcript_id", transcript.ID.String()),
			zap.String("status", string(transcript.Status)))
		return nil
	}

	if action == retakePrefix {
		return s.retake(ctx, from, transcript)
	}
	return s.confirm(ctx, from, transcript)
}

// HandleText replies with a usage hint; voice notes drive the flow.
func (s *messagingService) HandleText(ctx context.Context, messageID, from, text string) error {
	if first, err := s.deduper.FirstSeen(ctx, "wa:"+messageID); err != nil {
		s.logger.Warn("dedup check failed, continuing", zap.String("message_id", messageID), zap.Error(err))
	} else if !first {
		return nil
	}
	return s.messenger.SendText(ctx, from,
		"Send a voice note describing your sales report, and we'll transcribe it for you.")
}

func (s *messagingService) confirm(ctx context.Context, from string, transcript *entities.VoiceTranscript) error {
	ownerID := transcript.UserID
	if ownerID == nil {
		if mapping, err := s.phoneRepo.FindByPhoneNumber(ctx, from); err == nil && mapping != nil {
			ownerID = &mapping.UserID
		}
	}

	var template *entities.UserTemplate
	if ownerID != nil {
		var err error
		template, err = s.templateRepo.FindDefaultByUserID(ctx, *ownerID)
		if err != nil {
			s.logger.Warn("default template lookup failed", zap.String("user_id", ownerID.String()), zap.Error(err))
		}
	}

	if template == nil {
		if err := transcript.Confirm(nil, nil); err != nil {
			return err
		}
		transcript.UserID = ownerID
		if err := s.transcriptRepo.Update(ctx, transcript); err != nil {
			return apperrors.ErrDBQueryFailed("confirm transcript", err)
		}
		return s.messenger.SendText(ctx, from,
			"Report saved. Configure a report template in the app to get structured fields extracted automatically.")
	}

	data, err := s.extractor.Extract(ctx, transcript.Transcript, template)
	if err != nil {
		// Extraction failure still confirms; the text is the record
		s.logger.Error("extraction failed, confirming without data",
			zap.String("transcript_id", transcript.ID.String()),
			zap.Error(err))
		data = nil
	}

	if err := transcript.Confirm(&template.ID, data); err != nil {
		return err
	}
	transcript.UserID = ownerID
	if err := s.transcriptRepo.Update(ctx, transcript); err != nil {
		return apperrors.ErrDBQueryFailed("confirm transcript", err)
	}

	s.logger.Info("transcript confirmed",
		zap.String("transcript_id", transcript.ID.String()),
		zap.Bool("extracted", data != nil))

	return s.messenger.SendText(ctx, from, "Report confirmed and filed. Thanks!")
}

func (s *messagingService) retake(ctx context.Context, from string, transcript *entities.VoiceTranscript) error {
	if err := transcript.Retake(); err != nil {
		return err
	}
	if err := s.transcriptRepo.Update(ctx, transcript); err != nil {
		return apperrors.ErrDBQueryFailed("retake transcript", err)
	}
	s.logger.Info("transcript retaken", zap.String("transcript_id", transcript.ID.String()))
	return s.messenger.SendText(ctx, from, "No problem. Send a new voice note whenever you're ready.")
}

func (s *messagingService) resolveTranscript(ctx context.Context, from string, transcriptID *uuid.UUID) (*entities.VoiceTranscript, error) {
	if transcriptID != nil {
		transcript, err := s.transcriptRepo.FindByID(ctx, *transcriptID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("find transcript", err)
		}
		if transcript != nil {
			return transcript, nil
		}
		// Stale button from a deleted record; fall through to newest pending
	}
	transcript, err := s.transcriptRepo.FindLatestPendingByPhone(ctx, from)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("find pending transcript", err)
	}
	return transcript, nil
}

func parseButtonID(buttonID string) (action string, transcriptID *uuid.UUID) {
	parts := strings.SplitN(buttonID, ":", 2)
	switch parts[0] {
	case confirmPrefix, retakePrefix:
		action = parts[0]
	default:
		return "", nil
	}
	if len(parts) == 2 {
		if id, err := uuid.Parse(parts[1]); err == nil {
			return action, &id
		}
	}
	return action, nil
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	// Never split a multi-byte rune
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func filenameFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "ogg"):
		return "voice.ogg"
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return "voice.mp3"
	case strings.Contains(contentType, "mp4"), strings.Contains(contentType, "m4a"):
		return "voice.m4a"
	case strings.Contains(contentType, "wav"):
		return "voice.wav"
	default:
		return "voice.ogg"
	}
}
