package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Granularity selects the bucket size for time-series rollups.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// Bucket is one period of the rollup. The sequence an aggregation returns
// always covers every period in range, zero-filled where nothing happened —
// the dashboard charts rely on that.
type Bucket struct {
	Period      string          `json:"period"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
	Earnings    decimal.Decimal `json:"earnings"`
}

type AggregatorService struct {
	DB *gorm.DB
}

func NewAggregatorService(db *gorm.DB) *AggregatorService {
	return &AggregatorService{DB: db}
}

// Aggregate returns one bucket per period between rangeStart and rangeEnd
// inclusive, chronologically ascending. An affiliate with zero events gets a
// fully zero-filled sequence, never an empty one.
func (s *AggregatorService) Aggregate(affiliateID string, granularity Granularity, rangeStart, rangeEnd time.Time) ([]Bucket, error) {
	periods, err := EnumeratePeriods(granularity, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	rangeStart = truncatePeriod(granularity, rangeStart.UTC())
	// upper bound is exclusive: start of the period after rangeEnd
	rangeStop := nextPeriod(granularity, truncatePeriod(granularity, rangeEnd.UTC()))

	type countRow struct {
		Period time.Time
		N      int64
	}
	type sumRow struct {
		Period time.Time
		Total  decimal.Decimal
	}

	// Truncation happens in UTC regardless of the session timezone, so the
	// rollup rows land on the same labels the period enumeration produces.
	var clickRows []countRow
	if err := s.DB.Raw(`
		SELECT date_trunc(?, timestamp AT TIME ZONE 'UTC') AS period, COUNT(*) AS n
		FROM click_events
		WHERE affiliate_id = ? AND timestamp >= ? AND timestamp < ?
		GROUP BY 1`, string(granularity), affiliateID, rangeStart, rangeStop).
		Scan(&clickRows).Error; err != nil {
		return nil, ErrUnavailable
	}

	var convRows []countRow
	if err := s.DB.Raw(`
		SELECT date_trunc(?, timestamp AT TIME ZONE 'UTC') AS period, COUNT(*) AS n
		FROM click_events
		WHERE affiliate_id = ? AND converted = true AND timestamp >= ? AND timestamp < ?
		GROUP BY 1`, string(granularity), affiliateID, rangeStart, rangeStop).
		Scan(&convRows).Error; err != nil {
		return nil, ErrUnavailable
	}

	var earningRows []sumRow
	if err := s.DB.Raw(`
		SELECT date_trunc(?, created_at AT TIME ZONE 'UTC') AS period, COALESCE(SUM(amount), 0) AS total
		FROM earning_records
		WHERE affiliate_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY 1`, string(granularity), affiliateID, rangeStart, rangeStop).
		Scan(&earningRows).Error; err != nil {
		return nil, ErrUnavailable
	}

	clicks := make(map[string]int64, len(clickRows))
	for _, r := range clickRows {
		clicks[PeriodLabel(granularity, r.Period)] = r.N
	}
	conversions := make(map[string]int64, len(convRows))
	for _, r := range convRows {
		conversions[PeriodLabel(granularity, r.Period)] = r.N
	}
	earnings := make(map[string]decimal.Decimal, len(earningRows))
	for _, r := range earningRows {
		earnings[PeriodLabel(granularity, r.Period)] = r.Total
	}

	return FillBuckets(granularity, periods, clicks, conversions, earnings), nil
}

// Caps on request-driven aggregation spans. The stats endpoints build their
// own bounded windows; these guard only the caller-supplied ranges.
const (
	maxDaySpan   = 366 // days
	maxMonthSpan = 36  // months
)

// ValidateSpan rejects caller-supplied ranges that would enumerate an
// unbounded number of buckets. Checked arithmetically, before anything is
// allocated.
func ValidateSpan(granularity Granularity, rangeStart, rangeEnd time.Time) error {
	start := truncatePeriod(granularity, rangeStart.UTC())
	end := truncatePeriod(granularity, rangeEnd.UTC())

	switch granularity {
	case GranularityDay:
		if start.After(end) {
			return fmt.Errorf("range start after end: %w", ErrInvalidRange)
		}
		if end.Sub(start) > maxDaySpan*24*time.Hour {
			return fmt.Errorf("range exceeds %d days: %w", maxDaySpan, ErrInvalidRange)
		}
	case GranularityMonth:
		if start.After(end) {
			return fmt.Errorf("range start after end: %w", ErrInvalidRange)
		}
		months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
		if months > maxMonthSpan {
			return fmt.Errorf("range exceeds %d months: %w", maxMonthSpan, ErrInvalidRange)
		}
	default:
		return fmt.Errorf("granularity %q: %w", granularity, ErrInvalidRange)
	}
	return nil
}

// EnumeratePeriods lists every period start between rangeStart and rangeEnd
// inclusive. Pure — this replaces the raw generate_series SQL the dashboard
// used to zero-fill its charts, and is testable without a database.
func EnumeratePeriods(granularity Granularity, rangeStart, rangeEnd time.Time) ([]time.Time, error) {
	if granularity != GranularityDay && granularity != GranularityMonth {
		return nil, fmt.Errorf("granularity %q: %w", granularity, ErrInvalidRange)
	}
	start := truncatePeriod(granularity, rangeStart.UTC())
	end := truncatePeriod(granularity, rangeEnd.UTC())
	if start.After(end) {
		return nil, fmt.Errorf("range start after end: %w", ErrInvalidRange)
	}

	var periods []time.Time
	for p := start; !p.After(end); p = nextPeriod(granularity, p) {
		periods = append(periods, p)
	}
	return periods, nil
}

// FillBuckets folds per-period rollups onto the enumerated periods,
// zero-filling gaps. Pure.
func FillBuckets(granularity Granularity, periods []time.Time, clicks, conversions map[string]int64, earnings map[string]decimal.Decimal) []Bucket {
	buckets := make([]Bucket, 0, len(periods))
	for _, p := range periods {
		label := PeriodLabel(granularity, p)
		total, ok := earnings[label]
		if !ok {
			total = decimal.Zero
		}
		buckets = append(buckets, Bucket{
			Period:      label,
			Clicks:      clicks[label],
			Conversions: conversions[label],
			Earnings:    total,
		})
	}
	return buckets
}

// PeriodLabel renders the chart label for a period: "2006-01-02" for days,
// "Jan 2006" for months (the format the dashboard always showed).
func PeriodLabel(granularity Granularity, p time.Time) string {
	if granularity == GranularityMonth {
		return p.Format("Jan 2006")
	}
	return p.Format("2006-01-02")
}

func truncatePeriod(granularity Granularity, t time.Time) time.Time {
	if granularity == GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextPeriod(granularity Granularity, t time.Time) time.Time {
	if granularity == GranularityMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}
