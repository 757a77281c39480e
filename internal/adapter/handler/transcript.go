package handler

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/salescribe-team/salescribe/errors"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/domain/repositories"
	"github.com/salescribe-team/salescribe/internal/infrastructure/http/middleware"
)

// Transcript exposes read access to voice transcripts
type Transcript struct {
	transcriptRepo repositories.TranscriptRepository
	profileRepo    repositories.ProfileRepository
	logger         *zap.Logger
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(transcriptRepo repositories.TranscriptRepository, profileRepo repositories.ProfileRepository, logger *zap.Logger) *Transcript {
	return &Transcript{transcriptRepo: transcriptRepo, profileRepo: profileRepo, logger: logger}
}

// List returns the caller's transcripts, newest first. Managers also
// see transcripts filed by their sales representatives.
func (h *Transcript) List(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	ctx := c.Request().Context()
	userIDs := []uuid.UUID{claims.UserID}

	profile, err := h.profileRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("find profile", err))
	}
	if profile != nil && profile.Role == entities.RoleManager {
		repIDs, err := h.profileRepo.ListRepIDsByManagerID(ctx, claims.UserID)
		if err != nil {
			return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list reps", err))
		}
		userIDs = append(userIDs, repIDs...)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	transcripts, err := h.transcriptRepo.ListByUserIDs(ctx, userIDs, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list transcripts", err))
	}
	return HandleSuccess(h.logger, c, transcripts)
}

// Get returns one transcript the caller may read
func (h *Transcript) Get(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid transcript id"))
	}

	ctx := c.Request().Context()
	transcript, err := h.transcriptRepo.FindByID(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("find transcript", err))
	}
	if transcript == nil {
		return HandleError(h.logger, c, apperrors.ErrNotFound("transcript"))
	}

	if !h.canRead(ctx, claims.UserID, transcript) {
		return HandleError(h.logger, c, apperrors.ErrNotFound("transcript"))
	}
	return HandleSuccess(h.logger, c, transcript)
}

// canRead allows the owner and the owner's manager
func (h *Transcript) canRead(ctx context.Context, callerID uuid.UUID, transcript *entities.VoiceTranscript) bool {
	if transcript.UserID == nil {
		return false
	}
	if *transcript.UserID == callerID {
		return true
	}
	owner, err := h.profileRepo.FindByID(ctx, *transcript.UserID)
	if err != nil || owner == nil {
		return false
	}
	return owner.ManagerID != nil && *owner.ManagerID == callerID
}
