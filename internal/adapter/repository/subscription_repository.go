package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// SubscriptionRepository handles the local subscription mirror
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert creates or updates the row keyed by the vendor subscription id
func (r *SubscriptionRepository) Upsert(ctx context.Context, subscription *entities.Subscription) error {
	if subscription == nil {
		return errors.New("subscription cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "stripe_customer_id", "plan_type", "metered_item_id",
				"status", "current_period_start", "current_period_end", "updated_at",
			}),
		}).
		Create(subscription).Error
}

// FindByStripeID retrieves the mirror row for a vendor subscription
func (r *SubscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*entities.Subscription, error) {
	var subscription entities.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// FindActiveByUserID retrieves the user's active or trialing subscription
func (r *SubscriptionRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*entities.Subscription, error) {
	var subscription entities.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []entities.SubscriptionStatus{
			entities.SubscriptionStatusActive,
			entities.SubscriptionStatusTrialing,
		}).
		Order("updated_at DESC").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// UpdateStatus sets the status of the row keyed by vendor subscription id
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, stripeSubscriptionID string, status entities.SubscriptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Update("status", status).Error
}
