package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/salescribe-team/salescribe/errors"
	templatedto "github.com/salescribe-team/salescribe/internal/adapter/dto/template"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/domain/repositories"
	"github.com/salescribe-team/salescribe/internal/infrastructure/http/middleware"
	"github.com/salescribe-team/salescribe/pkg/jwt"
)

// Template exposes report template CRUD
type Template struct {
	repo   repositories.TemplateRepository
	logger *zap.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(repo repositories.TemplateRepository, logger *zap.Logger) *Template {
	return &Template{repo: repo, logger: logger}
}

// List returns the caller's templates
func (h *Template) List(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	templates, err := h.repo.ListByUserID(c.Request().Context(), claims.UserID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list templates", err))
	}
	return HandleSuccess(h.logger, c, templates)
}

// Create adds a new template for the caller
func (h *Template) Create(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req templatedto.CreateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	template := &entities.UserTemplate{
		ID:        uuid.New(),
		UserID:    claims.UserID,
		Name:      req.Name,
		Fields:    toEntityFields(req.Fields),
		IsDefault: req.IsDefault,
	}
	if err := template.Validate(); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	if template.IsDefault {
		if err := h.repo.ClearDefault(ctx, claims.UserID); err != nil {
			return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("clear default template", err))
		}
	}
	if err := h.repo.Create(ctx, template); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("create template", err))
	}
	return HandleSuccess(h.logger, c, template)
}

// Get returns one template owned by the caller
func (h *Template) Get(c echo.Context) error {
	_, template, err := h.ownedTemplate(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, template)
}

// Update replaces a template's name and fields
func (h *Template) Update(c echo.Context) error {
	_, template, err := h.ownedTemplate(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req templatedto.UpdateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	template.Name = req.Name
	template.Fields = toEntityFields(req.Fields)
	if err := template.Validate(); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	if err := h.repo.Update(c.Request().Context(), template); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("update template", err))
	}
	return HandleSuccess(h.logger, c, template)
}

// Delete removes a template owned by the caller
func (h *Template) Delete(c echo.Context) error {
	_, template, err := h.ownedTemplate(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.repo.Delete(c.Request().Context(), template.ID); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("delete template", err))
	}
	return HandleSuccess(h.logger, c, map[string]string{"deleted": template.ID.String()})
}

// SetDefault marks a template as the caller's default, clearing others
func (h *Template) SetDefault(c echo.Context) error {
	claims, template, err := h.ownedTemplate(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	if err := h.repo.ClearDefault(ctx, claims.UserID); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("clear default template", err))
	}
	template.IsDefault = true
	if err := h.repo.Update(ctx, template); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("set default template", err))
	}
	return HandleSuccess(h.logger, c, template)
}

// ownedTemplate loads the :id template and enforces ownership
func (h *Template) ownedTemplate(c echo.Context) (*jwt.Claims, *entities.UserTemplate, error) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return nil, nil, apperrors.ErrUnauthenticated()
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, nil, apperrors.ErrInvalidArgument("invalid template id")
	}

	template, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("find template", err)
	}
	if template == nil || template.UserID != claims.UserID {
		return nil, nil, apperrors.ErrTemplateNotFound(id.String())
	}
	return claims, template, nil
}

func toEntityFields(fields []templatedto.FieldRequest) []entities.TemplateField {
	out := make([]entities.TemplateField, 0, len(fields))
	for _, f := range fields {
		out = append(out, entities.TemplateField{
			Name:     f.Name,
			Type:     entities.FieldType(f.Type),
			Required: f.Required,
		})
	}
	return out
}
