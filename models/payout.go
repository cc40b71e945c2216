package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus tracks a transfer of accumulated approved earnings.
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// PayoutRecord is created only when a payout request clears the minimum
// threshold and the affiliate's approved-minus-paid balance covers it.
type PayoutRecord struct {
	ID          string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AffiliateID string          `gorm:"index;not null" json:"affiliate_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status      PayoutStatus    `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}
