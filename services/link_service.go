package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"affiliate-dashboard-system/models"
	"affiliate-dashboard-system/utils"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

type LinkService struct {
	DB      *gorm.DB
	BaseURL string // public base for tracked URLs, e.g. https://go.example.com
}

func NewLinkService(db *gorm.DB) *LinkService {
	baseURL := os.Getenv("TRACKING_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5100/t"
	}
	return &LinkService{DB: db, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Create makes a new trackable link for an active affiliate. The tracking
// code is generated here and never changes afterwards; on the rare
// collision the insert is retried with a fresh code.
func (s *LinkService) Create(affiliateID, name, targetURL string) (*models.AffiliateLink, error) {
	var affiliate models.Affiliate
	if err := s.DB.Where("id = ? AND status = ?", affiliateID, models.AffiliateStatusActive).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("affiliate %s: %w", affiliateID, ErrNotFound)
		}
		return nil, ErrUnavailable
	}
	if name == "" || targetURL == "" {
		return nil, fmt.Errorf("name and target URL required: %w", ErrInvalidRange)
	}

	link := &models.AffiliateLink{
		ID:          uuid.NewString(),
		AffiliateID: affiliateID,
		Name:        name,
		TargetURL:   targetURL,
		Active:      true,
	}

	for attempt := 0; attempt < 3; attempt++ {
		link.TrackingCode = utils.NewTrackingCode(name)
		err := s.DB.Create(link).Error
		if err == nil {
			return link, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		log.Printf("❌ [LINKS] Failed to create link for affiliate %s: %v", affiliateID, err)
		return nil, ErrUnavailable
	}
	return nil, ErrConflict
}

// List returns the affiliate's links; by default only active ones, matching
// the dashboard view.
func (s *LinkService) List(callerID, affiliateID string, includeInactive bool) ([]models.AffiliateLink, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}
	q := s.DB.Where("affiliate_id = ?", affiliateID)
	if !includeInactive {
		q = q.Where("active = true")
	}
	var links []models.AffiliateLink
	if err := q.Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, ErrUnavailable
	}
	return links, nil
}

// Deactivate soft-disables a link. Click history keeps pointing at it.
func (s *LinkService) Deactivate(callerID, linkID string) error {
	var link models.AffiliateLink
	if err := s.DB.Where("id = ?", linkID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("link %s: %w", linkID, ErrNotFound)
		}
		return ErrUnavailable
	}
	if link.AffiliateID != callerID {
		return ErrForbidden
	}
	if err := s.DB.Model(&link).Update("active", false).Error; err != nil {
		return ErrUnavailable
	}
	return nil
}

// ByTrackingCode resolves a share URL code to its active link.
func (s *LinkService) ByTrackingCode(code string) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	if err := s.DB.Where("tracking_code = ? AND active = true", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tracking code %s: %w", code, ErrNotFound)
		}
		return nil, ErrUnavailable
	}
	return &link, nil
}

// TrackedURL is the public share URL for a link.
func (s *LinkService) TrackedURL(link *models.AffiliateLink) string {
	return fmt.Sprintf("%s/%s", s.BaseURL, link.TrackingCode)
}

// QRCode renders the tracked URL as a PNG for print/offline sharing.
func (s *LinkService) QRCode(callerID, linkID string) ([]byte, error) {
	var link models.AffiliateLink
	if err := s.DB.Where("id = ?", linkID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("link %s: %w", linkID, ErrNotFound)
		}
		return nil, ErrUnavailable
	}
	if link.AffiliateID != callerID {
		return nil, ErrForbidden
	}

	png, err := qrcode.Encode(s.TrackedURL(&link), qrcode.Medium, 256)
	if err != nil {
		log.Printf("❌ [LINKS] QR encode failed for link %s: %v", linkID, err)
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
