package billing

import "time"

// CheckoutResponse carries the hosted checkout URL
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// SubscriptionResponse is the local view of a subscription
type SubscriptionResponse struct {
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	PlanType             string    `json:"plan_type"`
	Status               string    `json:"status"`
	CurrentPeriodStart   time.Time `json:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
}
