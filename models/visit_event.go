package models

import "time"

// VisitEvent is a richer session record fired from the tracked page after a
// click. When the page-view attribution policy is enabled, visits qualify
// their click for conversion linking.
type VisitEvent struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AffiliateID string    `gorm:"index;not null" json:"affiliate_id"`
	ClickID     *string   `gorm:"index" json:"click_id,omitempty"`
	Referrer    string    `gorm:"size:1024" json:"referrer"`
	Duration    int       `gorm:"default:0" json:"duration"` // seconds on page
	PageViews   int       `gorm:"default:0" json:"page_views"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
