package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/salescribe-team/salescribe/internal/adapter/dto/whatsapp"
	"github.com/salescribe-team/salescribe/internal/usecase/messaging"
	"github.com/salescribe-team/salescribe/pkg/config"
	"github.com/salescribe-team/salescribe/pkg/signature"
)

// WhatsAppWebhookHandler handles the Cloud API verification handshake
// and inbound message deliveries
type WhatsAppWebhookHandler struct {
	svc    messaging.Service
	cfg    *config.WhatsAppConfig
	logger *zap.Logger
}

// NewWhatsAppWebhookHandler creates a new handler
func NewWhatsAppWebhookHandler(svc messaging.Service, cfg *config.WhatsAppConfig, logger *zap.Logger) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{svc: svc, cfg: cfg, logger: logger}
}

// Verify answers the subscription handshake: echo hub.challenge only
// when the mode is subscribe and the verify token matches.
func (h *WhatsAppWebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.VerifyToken {
		return c.String(http.StatusOK, challenge)
	}

	h.logger.Warn("webhook verification rejected", zap.String("mode", mode))
	return c.NoContent(http.StatusForbidden)
}

// Receive accepts message deliveries. The envelope is acked with 200 as
// soon as it parses; processing failures are logged, never surfaced,
// so the vendor does not retry-storm us.
func (h *WhatsAppWebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	// Signature enforcement only when an app secret is configured
	if h.cfg.AppSecret != "" {
		sig := c.Request().Header.Get("X-Hub-Signature-256")
		if !signature.VerifyHMAC(h.cfg.AppSecret, body, sig) {
			h.logger.Warn("webhook signature mismatch")
			return c.NoContent(http.StatusForbidden)
		}
	}

	var envelope whatsapp.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.logger.Warn("unparseable webhook payload", zap.Error(err))
		return c.NoContent(http.StatusBadRequest)
	}

	// Process after ack; deliveries must not block on vendor calls
	go h.dispatch(context.WithoutCancel(c.Request().Context()), &envelope)

	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}

func (h *WhatsAppWebhookHandler) dispatch(ctx context.Context, envelope *whatsapp.WebhookEnvelope) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				h.dispatchMessage(ctx, msg)
			}
		}
	}
}

func (h *WhatsAppWebhookHandler) dispatchMessage(ctx context.Context, msg whatsapp.Message) {
	from := "+" + msg.From

	var err error
	switch {
	case msg.Type == "audio" && msg.Audio != nil:
		err = h.svc.ProcessVoiceMessage(ctx, msg.ID, from, msg.Audio.ID)
	case msg.Type == "voice" && msg.Voice != nil:
		err = h.svc.ProcessVoiceMessage(ctx, msg.ID, from, msg.Voice.ID)
	case msg.Type == "interactive" && msg.Interactive != nil:
		reply := msg.Interactive.ButtonReply
		if reply == nil {
			reply = msg.Interactive.ListReply
		}
		if reply == nil {
			h.logger.Info("interactive message without reply payload", zap.String("message_id", msg.ID))
			return
		}
		err = h.svc.HandleButtonReply(ctx, msg.ID, from, reply.ID, reply.Title)
	case msg.Type == "text" && msg.Text != nil:
		err = h.svc.HandleText(ctx, msg.ID, from, msg.Text.Body)
	default:
		h.logger.Info("skipping unsupported message type",
			zap.String("message_id", msg.ID),
			zap.String("type", msg.Type))
		return
	}

	if err != nil {
		h.logger.Error("message processing failed",
			zap.String("message_id", msg.ID),
			zap.String("type", msg.Type),
			zap.Error(err))
	}
}
