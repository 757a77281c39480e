package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	stripeclient "github.com/salescribe-team/salescribe/internal/infrastructure/external/stripe"
	"github.com/salescribe-team/salescribe/internal/usecase/billing"
	"github.com/salescribe-team/salescribe/pkg/config"
)

// StripeWebhookHandler receives billing events from Stripe
type StripeWebhookHandler struct {
	svc    billing.Service
	cfg    *config.StripeConfig
	logger *zap.Logger
}

// NewStripeWebhookHandler creates a new handler
func NewStripeWebhookHandler(svc billing.Service, cfg *config.StripeConfig, logger *zap.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{svc: svc, cfg: cfg, logger: logger}
}

// Receive verifies the event signature and applies it to the local
// mirror. Processing errors still ack 200: the event stream reconciles
// state on the next delivery, and a 5xx would only cause retry storms.
func (h *StripeWebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	event, err := stripeclient.VerifyWebhook(body, c.Request().Header.Get("Stripe-Signature"), h.cfg.WebhookSecret)
	if err != nil {
		h.logger.Warn("stripe webhook rejected", zap.Error(err))
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.svc.HandleWebhookEvent(c.Request().Context(), event); err != nil {
		h.logger.Error("stripe event processing failed",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, map[string]string{"received": "true"})
}
