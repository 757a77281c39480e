package entities

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the Stripe subscription status strings.
// Transitions are vendor-driven; this service never computes them locally.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
)

// IsTerminal reports whether the subscription can no longer accrue usage
func (s SubscriptionStatus) IsTerminal() bool {
	switch s {
	case SubscriptionStatusCanceled, SubscriptionStatusIncompleteExpired:
		return true
	}
	return false
}

// PlanType identifies the product tier a subscription was sold under
type PlanType string

const (
	PlanStarter  PlanType = "starter"
	PlanBusiness PlanType = "business"
)

// IsValid checks if the plan type is known
func (p PlanType) IsValid() bool {
	return p == PlanStarter || p == PlanBusiness
}

// Subscription is the local mirror of a Stripe subscription object,
// upserted from billing webhook events keyed on the vendor subscription id.
type Subscription struct {
	ID                   uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StripeSubscriptionID string             `json:"stripe_subscription_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	StripeCustomerID     string             `json:"stripe_customer_id" gorm:"type:varchar(255);index"`
	UserID               uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	PlanType             PlanType           `json:"plan_type" gorm:"type:varchar(50);not null"`
	MeteredItemID        *string            `json:"metered_item_id,omitempty" gorm:"type:varchar(255)"`
	Status               SubscriptionStatus `json:"status" gorm:"type:varchar(50);not null;index"`
	CurrentPeriodStart   time.Time          `json:"current_period_start"`
	CurrentPeriodEnd     time.Time          `json:"current_period_end"`
	CreatedAt            time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
