package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AffiliateStatus indicates the lifecycle state of an affiliate account
type AffiliateStatus string

const (
	AffiliateStatusPending   AffiliateStatus = "pending"
	AffiliateStatusActive    AffiliateStatus = "active"
	AffiliateStatusSuspended AffiliateStatus = "suspended"
)

// Affiliate is the local mirror of an affiliate identity.
// Rows are populated by the directory sync worker from the identity service;
// registration and login live there, not here.
// Affiliates are never hard-deleted — suspension is a status flip.
type Affiliate struct {
	ID             string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalID     string          `gorm:"uniqueIndex;not null" json:"external_id"` // identity service UUID
	Name           string          `gorm:"not null" json:"name"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"commission_rate"`
	Status         AffiliateStatus `gorm:"not null;default:'pending';index" json:"status"`
	PaymentMethod  string          `json:"payment_method"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}
