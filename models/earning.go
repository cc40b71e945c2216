package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EarningStatus is the payout lifecycle of a conversion.
// Transitions are monotonic: pending → approved → paid, nothing else.
type EarningStatus string

const (
	EarningStatusPending  EarningStatus = "pending"
	EarningStatusApproved EarningStatus = "approved"
	EarningStatusPaid     EarningStatus = "paid"
)

var earningTransitions = map[EarningStatus]EarningStatus{
	EarningStatusPending:  EarningStatusApproved,
	EarningStatusApproved: EarningStatusPaid,
}

// CanTransition reports whether from → to is a permitted status change.
func (from EarningStatus) CanTransition(to EarningStatus) bool {
	return earningTransitions[from] == to
}

// EarningRecord is a monetized conversion for one affiliate.
// LinkedClickID is set at most once by the conversion linker.
type EarningRecord struct {
	ID            string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AffiliateID   string          `gorm:"index;not null" json:"affiliate_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status        EarningStatus   `gorm:"not null;default:'pending';index" json:"status"`
	Source        string          `gorm:"size:255" json:"source"`
	LinkedClickID *string         `gorm:"index" json:"linked_click_id,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}
