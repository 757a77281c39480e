package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// SubscriptionRepository defines the interface for the local subscription mirror
type SubscriptionRepository interface {
	// Upsert creates or updates the row keyed by the vendor subscription id
	Upsert(ctx context.Context, subscription *entities.Subscription) error

	// FindByStripeID finds the mirror row for a vendor subscription; nil when absent
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*entities.Subscription, error)

	// FindActiveByUserID returns the user's active or trialing subscription, or nil
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error)

	// UpdateStatus sets the status of the row keyed by vendor subscription id
	UpdateStatus(ctx context.Context, stripeSubscriptionID string, status entities.SubscriptionStatus) error
}

// WalletRepository defines the interface for credits wallet data access
type WalletRepository interface {
	// FindByManagerID returns the manager's wallet, or nil when absent
	FindByManagerID(ctx context.Context, managerID uuid.UUID) (*entities.CreditsWallet, error)

	// Save upserts the wallet row
	Save(ctx context.Context, wallet *entities.CreditsWallet) error
}
