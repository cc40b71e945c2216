package models

import "time"

// AffiliateLink is a trackable URL owned by one affiliate.
// TrackingCode is unique and immutable after creation; links are
// deactivated, never deleted, so click history keeps its reference.
type AffiliateLink struct {
	ID           string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AffiliateID  string    `gorm:"index;not null" json:"affiliate_id"`
	Name         string    `gorm:"not null" json:"name"`
	TargetURL    string    `gorm:"type:text;not null" json:"target_url"`
	TrackingCode string    `gorm:"uniqueIndex;not null;size:64" json:"tracking_code"`
	Active       bool      `gorm:"default:true;index" json:"active"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
