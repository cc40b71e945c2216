package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"affiliate-dashboard-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutService creates payout records against the affiliate's approved
// balance. The balance invariant — approved earnings minus completed
// payouts never goes negative — is enforced inside one transaction with the
// affiliate row locked, so two concurrent requests cannot both drain it.
type PayoutService struct {
	DB      *gorm.DB
	Minimum decimal.Decimal
	Stats   *StatsService
}

func NewPayoutService(db *gorm.DB, minimum decimal.Decimal, stats *StatsService) *PayoutService {
	return &PayoutService{DB: db, Minimum: minimum, Stats: stats}
}

// Balance is what the affiliate can still withdraw.
func (s *PayoutService) Balance(callerID, affiliateID string) (decimal.Decimal, error) {
	if callerID != affiliateID {
		return decimal.Zero, ErrForbidden
	}
	var balance decimal.Decimal
	err := withReadRetry(func() error {
		b, err := availableBalance(s.DB, affiliateID)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	return balance, err
}

// Request creates a pending payout for the given amount.
func (s *PayoutService) Request(ctx context.Context, callerID, affiliateID string, amount decimal.Decimal) (*models.PayoutRecord, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}
	if amount.LessThan(s.Minimum) {
		return nil, fmt.Errorf("amount %s below minimum %s: %w", amount.StringFixed(2), s.Minimum.StringFixed(2), ErrInvalidRange)
	}

	var payout *models.PayoutRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var affiliate models.Affiliate
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", affiliateID).First(&affiliate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("affiliate %s: %w", affiliateID, ErrNotFound)
			}
			return ErrUnavailable
		}

		balance, err := availableBalance(tx, affiliateID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return fmt.Errorf("amount %s exceeds balance %s: %w", amount.StringFixed(2), balance.StringFixed(2), ErrConflict)
		}

		payout = &models.PayoutRecord{
			ID:          uuid.NewString(),
			AffiliateID: affiliateID,
			Amount:      amount,
			Status:      models.PayoutStatusPending,
		}
		if err := tx.Create(payout).Error; err != nil {
			return ErrUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("💸 [PAYOUTS] Payout %s requested: affiliate=%s amount=%s", payout.ID, affiliateID, amount.StringFixed(2))
	s.Stats.Invalidate(ctx, affiliateID)
	return payout, nil
}

// List returns the affiliate's payout history, newest first.
func (s *PayoutService) List(callerID, affiliateID string, limit int) ([]models.PayoutRecord, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var payouts []models.PayoutRecord
	if err := s.DB.Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").Limit(limit).Find(&payouts).Error; err != nil {
		return nil, ErrUnavailable
	}
	return payouts, nil
}

// availableBalance computes approved earnings minus payouts that are
// completed or still in flight — reserving in-flight amounts keeps the
// invariant under concurrent requests.
func availableBalance(tx *gorm.DB, affiliateID string) (decimal.Decimal, error) {
	var approved struct{ Total decimal.Decimal }
	if err := tx.Model(&models.EarningRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("affiliate_id = ? AND status IN ?", affiliateID,
			[]models.EarningStatus{models.EarningStatusApproved, models.EarningStatusPaid}).
		Scan(&approved).Error; err != nil {
		return decimal.Zero, ErrUnavailable
	}

	var paidOut struct{ Total decimal.Decimal }
	if err := tx.Model(&models.PayoutRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("affiliate_id = ? AND status IN ?", affiliateID,
			[]models.PayoutStatus{models.PayoutStatusPending, models.PayoutStatusProcessing, models.PayoutStatusCompleted}).
		Scan(&paidOut).Error; err != nil {
		return decimal.Zero, ErrUnavailable
	}

	return AvailableBalance(approved.Total, paidOut.Total), nil
}

// AvailableBalance is the pure balance rule: approved minus reserved, never
// negative.
func AvailableBalance(approved, reserved decimal.Decimal) decimal.Decimal {
	balance := approved.Sub(reserved)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
