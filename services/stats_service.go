package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"affiliate-dashboard-system/models"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	statsCachePrefix    = "affiliate_stats:"
	earningsCachePrefix = "affiliate_earnings:"
	statsCacheTTL       = 5 * time.Minute

	readRetryAttempts = 3
	readRetryBaseWait = 100 * time.Millisecond
)

// StatsService is the tenant-scoped read side. Every method takes the
// authenticated caller id and refuses cross-tenant reads. Reads retry a
// bounded number of times on store failure; writes elsewhere never do.
type StatsService struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Aggregator *AggregatorService
}

func NewStatsService(db *gorm.DB, redisClient *redis.Client, aggregator *AggregatorService) *StatsService {
	return &StatsService{DB: db, Redis: redisClient, Aggregator: aggregator}
}

// StatsSummary is the dashboard headline block plus the daily series.
type StatsSummary struct {
	TotalClicks    int64           `json:"total_clicks"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	Conversions    int64           `json:"conversions"`
	ConversionRate float64         `json:"conversion_rate"`
	ActiveLinks    int64           `json:"active_links"`
	DailyStats     []Bucket        `json:"daily_stats"`
}

// LinkStatsSummary is the per-link breakdown.
type LinkStatsSummary struct {
	LinkID       string  `json:"link_id"`
	Name         string  `json:"name"`
	TrackingCode string  `json:"tracking_code"`
	Active       bool    `json:"active"`
	Clicks       int64   `json:"clicks"`
	Conversions  int64   `json:"conversions"`
	LastClickAt  *string `json:"last_click_at,omitempty"`
}

// EarningsSummary mirrors the earnings page: headline figures plus a
// 12-month series.
type EarningsSummary struct {
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
	LastPayout      decimal.Decimal `json:"last_payout"`
	Monthly         []Bucket        `json:"monthly"`
}

// Stats computes the affiliate's headline numbers over the last windowDays
// days, cache-aside in Redis.
func (s *StatsService) Stats(ctx context.Context, callerID, affiliateID string, windowDays int) (*StatsSummary, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	cacheKey := fmt.Sprintf("%s%s:%d", statsCachePrefix, affiliateID, windowDays)
	if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var cached StatsSummary
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("⚠️ [STATS] Redis GET failed, falling back to DB: %v", err)
	}

	var summary *StatsSummary
	err := withReadRetry(func() error {
		computed, err := s.computeStats(affiliateID, windowDays)
		if err != nil {
			return err
		}
		summary = computed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := s.Redis.Set(ctx, cacheKey, data, statsCacheTTL).Err(); err != nil {
			log.Printf("⚠️ [STATS] Failed to cache stats for %s: %v", affiliateID, err)
		}
	}
	return summary, nil
}

func (s *StatsService) computeStats(affiliateID string, windowDays int) (*StatsSummary, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -windowDays+1)

	var totalClicks int64
	if err := s.DB.Model(&models.ClickEvent{}).
		Where("affiliate_id = ? AND timestamp >= ?", affiliateID, since).
		Count(&totalClicks).Error; err != nil {
		return nil, ErrUnavailable
	}

	var conversions int64
	if err := s.DB.Model(&models.ClickEvent{}).
		Where("affiliate_id = ? AND converted = true AND timestamp >= ?", affiliateID, since).
		Count(&conversions).Error; err != nil {
		return nil, ErrUnavailable
	}

	var earned struct{ Total decimal.Decimal }
	if err := s.DB.Model(&models.EarningRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("affiliate_id = ? AND created_at >= ?", affiliateID, since).
		Scan(&earned).Error; err != nil {
		return nil, ErrUnavailable
	}

	var activeLinks int64
	if err := s.DB.Model(&models.AffiliateLink{}).
		Where("affiliate_id = ? AND active = true", affiliateID).
		Count(&activeLinks).Error; err != nil {
		return nil, ErrUnavailable
	}

	daily, err := s.Aggregator.Aggregate(affiliateID, GranularityDay, since, now)
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if totalClicks > 0 {
		rate = float64(conversions) / float64(totalClicks) * 100
	}

	return &StatsSummary{
		TotalClicks:    totalClicks,
		TotalEarnings:  earned.Total,
		Conversions:    conversions,
		ConversionRate: rate,
		ActiveLinks:    activeLinks,
		DailyStats:     daily,
	}, nil
}

// Earnings returns the earnings page summary: totals plus the last 12
// months, cache-aside like Stats.
func (s *StatsService) Earnings(ctx context.Context, callerID, affiliateID string) (*EarningsSummary, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}

	cacheKey := earningsCachePrefix + affiliateID
	if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var cached EarningsSummary
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("⚠️ [STATS] Redis GET failed, falling back to DB: %v", err)
	}

	var summary *EarningsSummary
	err := withReadRetry(func() error {
		total, err := s.sumEarnings(affiliateID, nil)
		if err != nil {
			return err
		}
		pending := models.EarningStatusPending
		pendingSum, err := s.sumEarnings(affiliateID, &pending)
		if err != nil {
			return err
		}
		lastPayout, err := s.lastCompletedPayout(affiliateID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		monthly, err := s.Aggregator.Aggregate(affiliateID, GranularityMonth, now.AddDate(0, -11, 0), now)
		if err != nil {
			return err
		}

		summary = &EarningsSummary{
			TotalEarnings:   total,
			PendingEarnings: pendingSum,
			LastPayout:      lastPayout,
			Monthly:         monthly,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summary); err == nil {
		_ = s.Redis.Set(ctx, cacheKey, data, statsCacheTTL).Err()
	}
	return summary, nil
}

// TotalEarnings sums every earning regardless of status.
func (s *StatsService) TotalEarnings(callerID, affiliateID string) (decimal.Decimal, error) {
	if callerID != affiliateID {
		return decimal.Zero, ErrForbidden
	}
	var total decimal.Decimal
	err := withReadRetry(func() error {
		sum, err := s.sumEarnings(affiliateID, nil)
		if err != nil {
			return err
		}
		total = sum
		return nil
	})
	return total, err
}

// PendingEarnings sums earnings still awaiting approval.
func (s *StatsService) PendingEarnings(callerID, affiliateID string) (decimal.Decimal, error) {
	if callerID != affiliateID {
		return decimal.Zero, ErrForbidden
	}
	var total decimal.Decimal
	err := withReadRetry(func() error {
		pending := models.EarningStatusPending
		sum, err := s.sumEarnings(affiliateID, &pending)
		if err != nil {
			return err
		}
		total = sum
		return nil
	})
	return total, err
}

// LastPayout returns the amount of the most recent completed payout, zero
// when the affiliate has never been paid out.
func (s *StatsService) LastPayout(callerID, affiliateID string) (decimal.Decimal, error) {
	if callerID != affiliateID {
		return decimal.Zero, ErrForbidden
	}
	var amount decimal.Decimal
	err := withReadRetry(func() error {
		last, err := s.lastCompletedPayout(affiliateID)
		if err != nil {
			return err
		}
		amount = last
		return nil
	})
	return amount, err
}

// LinkStats returns per-link click and conversion counts. Ownership is
// checked against the caller — requesting someone else's link is Forbidden,
// not NotFound, once the link exists.
func (s *StatsService) LinkStats(callerID, linkID string) (*LinkStatsSummary, error) {
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

	var summary *LinkStatsSummary
	err := withReadRetry(func() error {
		var clicks int64
		if err := s.DB.Model(&models.ClickEvent{}).
			Where("link_id = ?", linkID).Count(&clicks).Error; err != nil {
			return ErrUnavailable
		}
		var conversions int64
		if err := s.DB.Model(&models.ClickEvent{}).
			Where("link_id = ? AND converted = true", linkID).Count(&conversions).Error; err != nil {
			return ErrUnavailable
		}

		var lastClickAt *string
		var latest models.ClickEvent
		if err := s.DB.Where("link_id = ?", linkID).
			Order("timestamp DESC").First(&latest).Error; err == nil {
			formatted := latest.Timestamp.Format(time.RFC3339)
			lastClickAt = &formatted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnavailable
		}

		summary = &LinkStatsSummary{
			LinkID:       link.ID,
			Name:         link.Name,
			TrackingCode: link.TrackingCode,
			Active:       link.Active,
			Clicks:       clicks,
			Conversions:  conversions,
			LastClickAt:  lastClickAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// AggregateRange exposes raw bucket sequences for the reporting collaborator.
func (s *StatsService) AggregateRange(callerID, affiliateID string, granularity Granularity, start, end time.Time) ([]Bucket, error) {
	if callerID != affiliateID {
		return nil, ErrForbidden
	}
	if err := ValidateSpan(granularity, start, end); err != nil {
		return nil, err
	}
	var buckets []Bucket
	err := withReadRetry(func() error {
		b, err := s.Aggregator.Aggregate(affiliateID, granularity, start, end)
		if err != nil {
			return err
		}
		buckets = b
		return nil
	})
	return buckets, err
}

// Invalidate drops cached summaries after a write touching the affiliate.
func (s *StatsService) Invalidate(ctx context.Context, affiliateID string) {
	iter := s.Redis.Scan(ctx, 0, statsCachePrefix+affiliateID+":*", 50).Iterator()
	for iter.Next(ctx) {
		_ = s.Redis.Del(ctx, iter.Val()).Err()
	}
	_ = s.Redis.Del(ctx, earningsCachePrefix+affiliateID).Err()
}

func (s *StatsService) sumEarnings(affiliateID string, status *models.EarningStatus) (decimal.Decimal, error) {
	q := s.DB.Model(&models.EarningRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("affiliate_id = ?", affiliateID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var row struct{ Total decimal.Decimal }
	if err := q.Scan(&row).Error; err != nil {
		return decimal.Zero, ErrUnavailable
	}
	return row.Total, nil
}

func (s *StatsService) lastCompletedPayout(affiliateID string) (decimal.Decimal, error) {
	var payout models.PayoutRecord
	err := s.DB.Where("affiliate_id = ? AND status = ?", affiliateID, models.PayoutStatusCompleted).
		Order("created_at DESC").First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, ErrUnavailable
	}
	return payout.Amount, nil
}

// withReadRetry retries idempotent reads on store failure with linear
// backoff. Validation errors pass straight through.
func withReadRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < readRetryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return err
		}
		time.Sleep(readRetryBaseWait * time.Duration(attempt+1))
	}
	return err
}
