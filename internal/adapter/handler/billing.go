package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/salescribe-team/salescribe/errors"
	billingdto "github.com/salescribe-team/salescribe/internal/adapter/dto/billing"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/infrastructure/http/middleware"
	"github.com/salescribe-team/salescribe/internal/usecase/billing"
)

// activationWaitTimeout bounds how long a checkout/wait request holds
// its connection open before reporting a timeout.
const activationWaitTimeout = 60 * time.Second

// Billing exposes the billing API
type Billing struct {
	svc    billing.Service
	logger *zap.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(svc billing.Service, logger *zap.Logger) *Billing {
	return &Billing{svc: svc, logger: logger}
}

// Checkout starts a subscription checkout session
func (h *Billing) Checkout(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req billingdto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	url, err := h.svc.CreateCheckout(c.Request().Context(), claims.UserID, claims.Email, entities.PlanType(req.PlanType))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, billingdto.CheckoutResponse{CheckoutURL: url})
}

// WaitForActivation blocks until the caller's subscription goes active
// or the wait window closes
func (h *Billing) WaitForActivation(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	sub, err := h.svc.WaitForActivation(c.Request().Context(), claims.UserID, activationWaitTimeout)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, billingdto.SubscriptionResponse{
		StripeSubscriptionID: sub.StripeSubscriptionID,
		PlanType:             string(sub.PlanType),
		Status:               string(sub.Status),
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
	})
}

// RecordUsage meters transcriptions against the caller's subscription
func (h *Billing) RecordUsage(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req billingdto.UsageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	for i := int64(0); i < req.Quantity; i++ {
		if err := h.svc.RecordTranscription(c.Request().Context(), claims.UserID); err != nil {
			return HandleError(h.logger, c, err)
		}
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"recorded": req.Quantity})
}

// Cancel ends every live subscription on the caller's billing account
func (h *Billing) Cancel(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req billingdto.CancelRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	email := req.Email
	if email == "" {
		email = claims.Email
	}

	result, err := h.svc.Cancel(c.Request().Context(), claims.UserID, email)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, result)
}
