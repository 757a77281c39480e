package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/salescribe-team/salescribe/errors"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/domain/repositories"
	stripeclient "github.com/salescribe-team/salescribe/internal/infrastructure/external/stripe"
	"github.com/salescribe-team/salescribe/pkg/config"
)

// StripeAPI is the vendor surface billing needs, satisfied by the
// Stripe client and by fakes in tests.
type StripeAPI interface {
	CreateCheckoutSession(ctx context.Context, p stripeclient.CheckoutParams) (*stripeclient.CheckoutSession, error)
	FindCustomerByEmail(ctx context.Context, email string) (*stripeclient.Customer, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]stripeclient.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripeclient.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*stripeclient.Subscription, error)
	ReportUsage(ctx context.Context, itemID string, quantity int64, idempotencyKey string) error
	CreateInvoiceItem(ctx context.Context, customerID string, amountCents int64, currency, description string) error
}

// Notifier signals checkout activation across processes
type Notifier interface {
	NotifyActive(ctx context.Context, userID string) error
	WaitActive(ctx context.Context, userID string) error
}

// Mailer sends billing notices. Failures are logged, never fatal.
type Mailer interface {
	SendCancellationNotice(ctx context.Context, to string, cancelled, total int) error
	SendPaymentFailureNotice(ctx context.Context, to string) error
}

// Deduper makes webhook and usage writes replay-safe
type Deduper interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// CancelItemResult reports the outcome for one subscription in a cancel run
type CancelItemResult struct {
	SubscriptionID string `json:"subscription_id"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// CancelResult is the full outcome of a cancellation request
type CancelResult struct {
	Message string             `json:"message"`
	Results []CancelItemResult `json:"results"`
}

// Service orchestrates checkout, usage metering and cancellation
// against Stripe, mirroring vendor state into local rows.
type Service interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, email string, plan entities.PlanType) (string, error)
	WaitForActivation(ctx context.Context, userID uuid.UUID, timeout time.Duration) (*entities.Subscription, error)
	RecordTranscription(ctx context.Context, userID uuid.UUID) error
	Cancel(ctx context.Context, userID uuid.UUID, email string) (*CancelResult, error)
	HandleWebhookEvent(ctx context.Context, event *stripeclient.Event) error
}

type billingService struct {
	subscriptionRepo repositories.SubscriptionRepository
	walletRepo       repositories.WalletRepository
	profileRepo      repositories.ProfileRepository
	stripe           StripeAPI
	notifier         Notifier
	mailer           Mailer
	deduper          Deduper
	cfg              *config.StripeConfig
	logger           *zap.Logger
}

// NewService constructs the billing service
func NewService(
	subscriptionRepo repositories.SubscriptionRepository,
	walletRepo repositories.WalletRepository,
	profileRepo repositories.ProfileRepository,
	stripe StripeAPI,
	notifier Notifier,
	mailer Mailer,
	deduper Deduper,
	cfg *config.StripeConfig,
	logger *zap.Logger,
) Service {
	return &billingService{
		subscriptionRepo: subscriptionRepo,
		walletRepo:       walletRepo,
		profileRepo:      profileRepo,
		stripe:           stripe,
		notifier:         notifier,
		mailer:           mailer,
		deduper:          deduper,
		cfg:              cfg,
		logger:           logger,
	}
}

// meteredUsageTag marks the metered line on a subscription so item
// selection never depends on line ordering.
const meteredUsageTag = "metered_usage"

// CreateCheckout opens a hosted checkout session for the given plan and
// returns its URL. Metadata ties the resulting subscription back to the
// platform user.
func (s *billingService) CreateCheckout(ctx context.Context, userID uuid.UUID, email string, plan entities.PlanType) (string, error) {
	if !plan.IsValid() {
		return "", apperrors.ErrInvalidArgument(fmt.Sprintf("unknown plan type: %s", plan))
	}

	priceID, usagePriceID := s.cfg.StarterPriceID, s.cfg.StarterUsagePrice
	if plan == entities.PlanBusiness {
		priceID, usagePriceID = s.cfg.BusinessPriceID, s.cfg.BusinessUsagePrice
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripeclient.CheckoutParams{
		CustomerEmail: email,
		PriceID:       priceID,
		UsagePriceID:  usagePriceID,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
		Metadata: map[string]string{
			"user_id":   userID.String(),
			"plan_type": string(plan),
		},
	})
	if err != nil {
		return "", apperrors.ErrCheckoutFailed(err)
	}

	s.logger.Info("checkout session created",
		zap.String("user_id", userID.String()),
		zap.String("plan", string(plan)),
		zap.String("session_id", session.ID))

	return session.URL, nil
}

// WaitForActivation blocks until the user's local subscription row goes
// active, the timeout elapses, or the context is cancelled. It listens
// for the webhook handler's activation signal and polls the local row
// with backoff as a fallback for missed notifications.
func (s *billingService) WaitForActivation(ctx context.Context, userID uuid.UUID, timeout time.Duration) (*entities.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The row may already be active before we start listening
	if sub, err := s.subscriptionRepo.FindActiveByUserID(ctx, userID); err == nil && sub != nil {
		return sub, nil
	}

	notified := make(chan struct{}, 1)
	if s.notifier != nil {
		go func() {
			if err := s.notifier.WaitActive(ctx, userID.String()); err == nil {
				select {
				case notified <- struct{}{}:
				default:
				}
			}
		}()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = 0

	ticker := backoff.NewTicker(backoff.WithContext(policy, ctx))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, apperrors.ErrActivationTimeout(userID.String())
		case <-notified:
			if sub, err := s.subscriptionRepo.FindActiveByUserID(context.WithoutCancel(ctx), userID); err == nil && sub != nil {
				return sub, nil
			}
		case _, ok := <-ticker.C:
			if !ok {
				return nil, apperrors.ErrActivationTimeout(userID.String())
			}
			if sub, err := s.subscriptionRepo.FindActiveByUserID(ctx, userID); err == nil && sub != nil {
				return sub, nil
			}
		}
	}
}

// RecordTranscription meters one transcription against the billing
// owner's subscription and rolls the increment into the credits wallet.
func (s *billingService) RecordTranscription(ctx context.Context, userID uuid.UUID) error {
	ownerID, err := s.resolveBillingOwner(ctx, userID)
	if err != nil {
		return err
	}

	sub, err := s.subscriptionRepo.FindActiveByUserID(ctx, ownerID)
	if err != nil {
		return apperrors.ErrDBQueryFailed("find subscription", err)
	}
	if sub == nil {
		return apperrors.ErrSubscriptionNotFound()
	}

	itemID, err := s.resolveMeteredItem(ctx, sub)
	if err != nil {
		return err
	}

	// One usage record per transcription; the key makes vendor retries
	// and our own replays idempotent.
	idempotencyKey := fmt.Sprintf("usage:%s:%s", sub.StripeSubscriptionID, uuid.NewString())
	if err := s.stripe.ReportUsage(ctx, itemID, 1, idempotencyKey); err != nil {
		return apperrors.ErrUsageReportFailed(err)
	}

	return s.applyWalletUsage(ctx, ownerID, 1, sub.CurrentPeriodStart)
}

// Cancel cancels every non-terminal subscription for the user's Stripe
// customer, invoicing accrued unbilled usage first. Local rows are
// marked canceled even when the vendor call fails, so access ends.
func (s *billingService) Cancel(ctx context.Context, userID uuid.UUID, email string) (*CancelResult, error) {
	customer, err := s.stripe.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrStripeFailed("find customer", err)
	}
	if customer == nil {
		return &CancelResult{Message: "Successfully processed 0 of 0 subscriptions."}, nil
	}

	subs, err := s.stripe.ListSubscriptions(ctx, customer.ID)
	if err != nil {
		return nil, apperrors.ErrStripeFailed("list subscriptions", err)
	}

	var targets []stripeclient.Subscription
	for _, sub := range subs {
		if !entities.SubscriptionStatus(sub.Status).IsTerminal() {
			targets = append(targets, sub)
		}
	}

	result := &CancelResult{Results: make([]CancelItemResult, 0, len(targets))}
	succeeded := 0

	for _, sub := range targets {
		item := CancelItemResult{SubscriptionID: sub.ID}

		if err := s.invoiceAccruedUsage(ctx, userID, customer.ID, sub.ID); err != nil {
			s.logger.Warn("accrued usage invoicing failed",
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
		}

		if _, err := s.stripe.CancelSubscription(ctx, sub.ID); err != nil {
			item.Error = err.Error()
			s.logger.Error("vendor cancellation failed",
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
		} else {
			item.Success = true
			succeeded++
		}

		// Local access ends regardless of the vendor outcome
		if err := s.subscriptionRepo.UpdateStatus(ctx, sub.ID, entities.SubscriptionStatusCanceled); err != nil {
			s.logger.Error("local cancellation write failed",
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
		}

		result.Results = append(result.Results, item)
	}

	result.Message = fmt.Sprintf("Successfully processed %d of %d subscriptions.", succeeded, len(targets))

	if s.mailer != nil && len(targets) > 0 {
		if err := s.mailer.SendCancellationNotice(ctx, email, succeeded, len(targets)); err != nil {
			s.logger.Warn("cancellation notice email failed", zap.Error(err))
		}
	}

	return result, nil
}

// HandleWebhookEvent mirrors vendor subscription state into local rows.
// Events are deduplicated by vendor event id so redeliveries are no-ops.
func (s *billingService) HandleWebhookEvent(ctx context.Context, event *stripeclient.Event) error {
	if first, err := s.deduper.FirstSeen(ctx, "stripe:"+event.ID); err != nil {
		s.logger.Warn("webhook dedup check failed, continuing", zap.String("event_id", event.ID), zap.Error(err))
	} else if !first {
		s.logger.Info("skipping redelivered webhook event", zap.String("event_id", event.ID))
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		return s.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_succeeded":
		return s.handleInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		return s.handleInvoiceFailed(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func (s *billingService) handleCheckoutCompleted(ctx context.Context, event *stripeclient.Event) error {
	var session struct {
		ID           string `json:"id"`
		Customer     string `json:"customer"`
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return apperrors.ErrInvalidPayload()
	}
	if session.Subscription == "" {
		return nil
	}

	sub, err := s.stripe.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return apperrors.ErrStripeFailed("get subscription", err)
	}
	return s.mirrorSubscription(ctx, sub)
}

func (s *billingService) handleSubscriptionChanged(ctx context.Context, event *stripeclient.Event) error {
	var sub stripeclient.Subscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return apperrors.ErrInvalidPayload()
	}
	return s.mirrorSubscription(ctx, &sub)
}

func (s *billingService) handleSubscriptionDeleted(ctx context.Context, event *stripeclient.Event) error {
	var sub stripeclient.Subscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return apperrors.ErrInvalidPayload()
	}
	return s.subscriptionRepo.UpdateStatus(ctx, sub.ID, entities.SubscriptionStatusCanceled)
}

func (s *billingService) handleInvoicePaid(ctx context.Context, event *stripeclient.Event) error {
	var invoice struct {
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
		return apperrors.ErrInvalidPayload()
	}
	if invoice.Subscription == "" {
		return nil
	}

	sub, err := s.stripe.GetSubscription(ctx, invoice.Subscription)
	if err != nil {
		return apperrors.ErrStripeFailed("get subscription", err)
	}
	return s.mirrorSubscription(ctx, sub)
}

func (s *billingService) handleInvoiceFailed(ctx context.Context, event *stripeclient.Event) error {
	var invoice struct {
		Subscription  string `json:"subscription"`
		CustomerEmail string `json:"customer_email"`
	}
	if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
		return apperrors.ErrInvalidPayload()
	}

	if invoice.Subscription != "" {
		if err := s.subscriptionRepo.UpdateStatus(ctx, invoice.Subscription, entities.SubscriptionStatusPastDue); err != nil {
			s.logger.Error("past_due status write failed",
				zap.String("subscription_id", invoice.Subscription),
				zap.Error(err))
		}
	}

	if s.mailer != nil && invoice.CustomerEmail != "" {
		if err := s.mailer.SendPaymentFailureNotice(ctx, invoice.CustomerEmail); err != nil {
			s.logger.Warn("payment failure email failed", zap.Error(err))
		}
	}
	return nil
}

// mirrorSubscription upserts the local row for a vendor subscription
// and signals activation when the status lands on active.
func (s *billingService) mirrorSubscription(ctx context.Context, sub *stripeclient.Subscription) error {
	userID, err := uuid.Parse(sub.Metadata["user_id"])
	if err != nil {
		s.logger.Warn("subscription without user metadata, skipping",
			zap.String("subscription_id", sub.ID))
		return nil
	}

	plan := entities.PlanType(sub.Metadata["plan_type"])
	if !plan.IsValid() {
		plan = entities.PlanStarter
	}

	local := &entities.Subscription{
		ID:                   uuid.New(),
		UserID:               userID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer,
		PlanType:             plan,
		Status:               entities.SubscriptionStatus(sub.Status),
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if itemID := pickMeteredItem(sub); itemID != "" {
		local.MeteredItemID = &itemID
	}

	if err := s.subscriptionRepo.Upsert(ctx, local); err != nil {
		return apperrors.ErrDBQueryFailed("upsert subscription", err)
	}

	s.logger.Info("subscription mirrored",
		zap.String("subscription_id", sub.ID),
		zap.String("status", sub.Status))

	if local.Status == entities.SubscriptionStatusActive && s.notifier != nil {
		if err := s.notifier.NotifyActive(ctx, userID.String()); err != nil {
			s.logger.Warn("activation notify failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return nil
}

// resolveMeteredItem finds the subscription item to meter usage
// against: the locally cached item id, else the metadata-tagged item on
// the vendor subscription, else the first metered item.
func (s *billingService) resolveMeteredItem(ctx context.Context, sub *entities.Subscription) (string, error) {
	if sub.MeteredItemID != nil && *sub.MeteredItemID != "" {
		return *sub.MeteredItemID, nil
	}

	vendor, err := s.stripe.GetSubscription(ctx, sub.StripeSubscriptionID)
	if err != nil {
		return "", apperrors.ErrStripeFailed("get subscription", err)
	}

	itemID := pickMeteredItem(vendor)
	if itemID == "" {
		return "", apperrors.ErrNoMeteredItem(sub.StripeSubscriptionID)
	}

	sub.MeteredItemID = &itemID
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		s.logger.Warn("metered item cache write failed",
			zap.String("subscription_id", sub.StripeSubscriptionID),
			zap.Error(err))
	}
	return itemID, nil
}

// pickMeteredItem selects by the usage metadata tag first, then falls
// back to the first item with a metered price.
func pickMeteredItem(sub *stripeclient.Subscription) string {
	for _, item := range sub.Items.Data {
		if item.Metadata["usage_type"] == meteredUsageTag {
			return item.ID
		}
	}
	for _, item := range sub.Items.Data {
		if item.Price.Recurring.UsageType == "metered" {
			return item.ID
		}
	}
	return ""
}

func (s *billingService) resolveBillingOwner(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return uuid.Nil, apperrors.ErrDBQueryFailed("find profile", err)
	}
	if profile == nil {
		// No profile row yet: the user bills themselves
		return userID, nil
	}
	return profile.BillingOwnerID(), nil
}

func (s *billingService) applyWalletUsage(ctx context.Context, ownerID uuid.UUID, increment int64, cycleStart time.Time) error {
	wallet, err := s.walletRepo.FindByManagerID(ctx, ownerID)
	if err != nil {
		return apperrors.ErrDBQueryFailed("find wallet", err)
	}
	if wallet == nil {
		wallet = entities.NewCreditsWallet(ownerID, cycleStart)
	}
	wallet.ApplyUsage(increment, cycleStart)

	if err := s.walletRepo.Save(ctx, wallet); err != nil {
		return apperrors.ErrDBQueryFailed("save wallet", err)
	}
	return nil
}

// invoiceAccruedUsage adds the unbilled portion of this cycle's wallet
// usage to the final invoice. Metered usage already reported to the
// vendor bills itself; this covers usage tracked only locally.
func (s *billingService) invoiceAccruedUsage(ctx context.Context, userID uuid.UUID, customerID, subscriptionID string) error {
	ownerID, err := s.resolveBillingOwner(ctx, userID)
	if err != nil {
		return err
	}

	wallet, err := s.walletRepo.FindByManagerID(ctx, ownerID)
	if err != nil || wallet == nil {
		return err
	}
	if wallet.CreditsUsedThisMonth == 0 {
		return nil
	}

	description := fmt.Sprintf("Accrued usage at cancellation (%d reports, subscription %s)",
		wallet.CreditsUsedThisMonth, subscriptionID)
	amount := wallet.CreditsUsedThisMonth * int64(s.cfg.ReportPriceCents)
	return s.stripe.CreateInvoiceItem(ctx, customerID, amount, "usd", description)
}
