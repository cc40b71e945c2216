package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"affiliate-dashboard-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EarningService owns the conversion records and their status machine.
// Click volume alone never creates an earning — conversions arrive from the
// order system through the service-token ingest route, and only approved
// earnings count toward payouts.
type EarningService struct {
	DB     *gorm.DB
	Linker *LinkerService
	Stats  *StatsService
}

func NewEarningService(db *gorm.DB, linker *LinkerService, stats *StatsService) *EarningService {
	return &EarningService{DB: db, Linker: linker, Stats: stats}
}

// Create records a conversion and immediately runs attribution. A failed
// link attempt does not fail the earning — the sweep worker retries it.
func (s *EarningService) Create(ctx context.Context, affiliateID string, amount decimal.Decimal, source string, occurredAt *time.Time) (*models.EarningRecord, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount: %w", ErrInvalidRange)
	}

	var affiliate models.Affiliate
	if err := s.DB.Where("id = ?", affiliateID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("affiliate %s: %w", affiliateID, ErrNotFound)
		}
		return nil, ErrUnavailable
	}

	createdAt := time.Now().UTC()
	if occurredAt != nil {
		createdAt = occurredAt.UTC()
	}

	earning := &models.EarningRecord{
		ID:          uuid.NewString(),
		AffiliateID: affiliateID,
		Amount:      amount,
		Status:      models.EarningStatusPending,
		Source:      source,
		CreatedAt:   createdAt,
	}
	if err := s.DB.Create(earning).Error; err != nil {
		log.Printf("❌ [EARNINGS] Failed to create earning for affiliate %s: %v", affiliateID, err)
		return nil, ErrUnavailable
	}

	if linkedID, err := s.Linker.LinkConversion(earning.ID); err != nil {
		log.Printf("⚠️ [EARNINGS] Attribution failed for earning %s (sweep will retry): %v", earning.ID, err)
	} else {
		earning.LinkedClickID = linkedID
	}

	s.Stats.Invalidate(ctx, affiliateID)
	return earning, nil
}

// List returns the affiliate's earnings, newest first.
func (s *EarningService) List(callerID, affiliateID string, limit int) ([]models.EarningRecord, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var earnings []models.EarningRecord
	if err := s.DB.Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").Limit(limit).Find(&earnings).Error; err != nil {
		return nil, ErrUnavailable
	}
	return earnings, nil
}

// Transition moves an earning along pending → approved → paid inside a
// locked transaction. Any other edge, including paid → pending, fails with
// ErrInvalidTransition and changes nothing.
func (s *EarningService) Transition(ctx context.Context, earningID string, to models.EarningStatus) (*models.EarningRecord, error) {
	var earning models.EarningRecord

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", earningID).First(&earning).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("earning %s: %w", earningID, ErrNotFound)
			}
			return ErrUnavailable
		}

		if !earning.Status.CanTransition(to) {
			return fmt.Errorf("%s → %s: %w", earning.Status, to, ErrInvalidTransition)
		}

		earning.Status = to
		if err := tx.Save(&earning).Error; err != nil {
			return ErrUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Stats.Invalidate(ctx, earning.AffiliateID)
	return &earning, nil
}

// ApproveMatured flips pending earnings older than holdPeriod to approved.
// Called by the scheduler; returns how many were approved.
func (s *EarningService) ApproveMatured(holdPeriod time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-holdPeriod)

	var matured []models.EarningRecord
	if err := s.DB.Where("status = ? AND created_at <= ?", models.EarningStatusPending, cutoff).
		Limit(500).Find(&matured).Error; err != nil {
		return 0, ErrUnavailable
	}

	approved := 0
	for _, e := range matured {
		if _, err := s.Transition(context.Background(), e.ID, models.EarningStatusApproved); err != nil {
			log.Printf("⚠️ [EARNINGS] Failed to approve matured earning %s: %v", e.ID, err)
			continue
		}
		approved++
	}
	return approved, nil
}
