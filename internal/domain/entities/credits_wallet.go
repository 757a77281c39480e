package entities

import (
	"time"

	"github.com/google/uuid"
)

// CreditsWallet aggregates metered usage per manager. Sales representatives
// never own a wallet; their usage rolls up to their manager's.
type CreditsWallet struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ManagerID            uuid.UUID `json:"manager_id" gorm:"type:uuid;uniqueIndex;not null"`
	TotalCreditsUsed     int64     `json:"total_credits_used" gorm:"not null;default:0"`
	CreditsUsedThisMonth int64     `json:"credits_used_this_month" gorm:"not null;default:0"`

	// BillingCycleAnchor is the vendor-reported start of the current billing
	// cycle. A mismatch on increment means the cycle rolled over and the
	// monthly counter resets.
	BillingCycleAnchor time.Time `json:"billing_cycle_anchor" gorm:"not null"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (CreditsWallet) TableName() string {
	return "credits_wallets"
}

// NewCreditsWallet creates an empty wallet anchored at the given cycle start
func NewCreditsWallet(managerID uuid.UUID, cycleStart time.Time) *CreditsWallet {
	return &CreditsWallet{
		ID:                 uuid.New(),
		ManagerID:          managerID,
		BillingCycleAnchor: cycleStart,
		UpdatedAt:          time.Now(),
	}
}

// ApplyUsage adds an increment to the wallet. When the vendor's current
// cycle start differs from the stored anchor the monthly counter resets to
// the increment; otherwise it accumulates. The lifetime counter always grows.
func (w *CreditsWallet) ApplyUsage(increment int64, vendorCycleStart time.Time) {
	if !w.BillingCycleAnchor.Equal(vendorCycleStart) {
		w.CreditsUsedThisMonth = increment
		w.BillingCycleAnchor = vendorCycleStart
	} else {
		w.CreditsUsedThisMonth += increment
	}
	w.TotalCreditsUsed += increment
	w.UpdatedAt = time.Now()
}
