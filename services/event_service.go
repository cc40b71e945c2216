package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"affiliate-dashboard-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bounds for opaque telemetry strings. Longer values are truncated, not
// rejected — inbound pings are untrusted and must never fail on junk input.
const (
	maxIPLen        = 64
	maxUserAgentLen = 512
	maxReferrerLen  = 1024
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// RecordClick appends one immutable click row for an active affiliate.
// Concurrent calls never conflict — ordering exists only via Timestamp.
func (s *EventService) RecordClick(affiliateID string, linkID *string, ip, userAgent, referrer string) (*models.ClickEvent, error) {
	if err := s.requireActiveAffiliate(affiliateID); err != nil {
		return nil, err
	}

	if linkID != nil {
		var link models.AffiliateLink
		if err := s.DB.Where("id = ? AND affiliate_id = ? AND active = true", *linkID, affiliateID).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("link %s: %w", *linkID, ErrNotFound)
			}
			return nil, ErrUnavailable
		}
	}

	click := &models.ClickEvent{
		ID:          uuid.NewString(),
		AffiliateID: affiliateID,
		LinkID:      linkID,
		Timestamp:   time.Now().UTC(),
		IPAddress:   truncate(ip, maxIPLen),
		UserAgent:   truncate(userAgent, maxUserAgentLen),
		Referrer:    truncate(referrer, maxReferrerLen),
		Converted:   false,
	}
	if err := s.DB.Create(click).Error; err != nil {
		log.Printf("❌ [EVENTS] Failed to record click for affiliate %s: %v", affiliateID, err)
		return nil, ErrUnavailable
	}
	return click, nil
}

// RecordVisit appends a session record, optionally tied to an earlier click.
func (s *EventService) RecordVisit(affiliateID string, clickID *string, referrer string, duration, pageViews int) (*models.VisitEvent, error) {
	if err := s.requireActiveAffiliate(affiliateID); err != nil {
		return nil, err
	}
	if duration < 0 {
		duration = 0
	}
	if pageViews < 0 {
		pageViews = 0
	}

	visit := &models.VisitEvent{
		ID:          uuid.NewString(),
		AffiliateID: affiliateID,
		ClickID:     clickID,
		Referrer:    truncate(referrer, maxReferrerLen),
		Duration:    duration,
		PageViews:   pageViews,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.DB.Create(visit).Error; err != nil {
		log.Printf("❌ [EVENTS] Failed to record visit for affiliate %s: %v", affiliateID, err)
		return nil, ErrUnavailable
	}
	return visit, nil
}

func (s *EventService) requireActiveAffiliate(affiliateID string) error {
	var affiliate models.Affiliate
	err := s.DB.Where("id = ? AND status = ?", affiliateID, models.AffiliateStatusActive).First(&affiliate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("affiliate %s: %w", affiliateID, ErrNotFound)
		}
		return ErrUnavailable
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
