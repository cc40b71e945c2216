package models

import "time"

// ClickEvent is one inbound referral hit. Rows are immutable after creation
// except for Converted, which the conversion linker sets at most once.
type ClickEvent struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AffiliateID string    `gorm:"index;not null" json:"affiliate_id"`
	LinkID      *string   `gorm:"index" json:"link_id,omitempty"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	IPAddress   string    `gorm:"size:64" json:"ip_address"`
	UserAgent   string    `gorm:"size:512" json:"user_agent"`
	Referrer    string    `gorm:"size:1024" json:"referrer"`
	Converted   bool      `gorm:"default:false;index" json:"converted"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
