package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// WalletRepository handles credits wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// FindByManagerID retrieves the manager's wallet
func (r *WalletRepository) FindByManagerID(ctx context.Context, managerID uuid.UUID) (*entities.CreditsWallet, error) {
	var wallet entities.CreditsWallet
	if err := r.db.WithContext(ctx).Where("manager_id = ?", managerID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// Save upserts the wallet row keyed by manager id
func (r *WalletRepository) Save(ctx context.Context, wallet *entities.CreditsWallet) error {
	if wallet == nil {
		return errors.New("wallet cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "manager_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_credits_used", "credits_used_this_month", "billing_cycle_anchor", "updated_at",
			}),
		}).
		Create(wallet).Error
}
