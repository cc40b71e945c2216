package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEnumeratePeriodsDaily(t *testing.T) {
	start := time.Date(2025, 3, 28, 15, 30, 0, 0, time.UTC)
	end := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

	periods, err := EnumeratePeriods(GranularityDay, start, end)
	if err != nil {
		t.Fatalf("EnumeratePeriods returned error: %v", err)
	}
	if len(periods) != 6 {
		t.Fatalf("expected 6 daily periods, got %d", len(periods))
	}
	if got := periods[0]; !got.Equal(time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first period = %v, want 2025-03-28 midnight UTC", got)
	}
	if got := periods[5]; !got.Equal(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last period = %v, want 2025-04-02 midnight UTC", got)
	}
}

func TestEnumeratePeriodsMonthly(t *testing.T) {
	start := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	periods, err := EnumeratePeriods(GranularityMonth, start, end)
	if err != nil {
		t.Fatalf("EnumeratePeriods returned error: %v", err)
	}
	want := []string{"Nov 2024", "Dec 2024", "Jan 2025", "Feb 2025"}
	if len(periods) != len(want) {
		t.Fatalf("expected %d monthly periods, got %d", len(want), len(periods))
	}
	for i, p := range periods {
		if label := PeriodLabel(GranularityMonth, p); label != want[i] {
			t.Errorf("period %d label = %q, want %q", i, label, want[i])
		}
	}
}

func TestEnumeratePeriodsSingleDay(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	periods, err := EnumeratePeriods(GranularityDay, day, day)
	if err != nil {
		t.Fatalf("EnumeratePeriods returned error: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("expected a single period for start==end, got %d", len(periods))
	}
}

func TestEnumeratePeriodsRejectsReversedRange(t *testing.T) {
	start := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -3)

	if _, err := EnumeratePeriods(GranularityDay, start, end); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for reversed range, got %v", err)
	}
}

func TestEnumeratePeriodsRejectsUnknownGranularity(t *testing.T) {
	now := time.Now().UTC()
	if _, err := EnumeratePeriods(Granularity("week"), now, now); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for unknown granularity, got %v", err)
	}
}

func TestFillBucketsZeroFillsGaps(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	periods, err := EnumeratePeriods(GranularityDay, start, end)
	if err != nil {
		t.Fatalf("EnumeratePeriods returned error: %v", err)
	}

	clicks := map[string]int64{"2025-01-02": 5}
	conversions := map[string]int64{"2025-01-02": 1}
	earnings := map[string]decimal.Decimal{"2025-01-03": decimal.NewFromFloat(12.50)}

	buckets := FillBuckets(GranularityDay, periods, clicks, conversions, earnings)
	if len(buckets) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(buckets))
	}

	if b := buckets[0]; b.Clicks != 0 || b.Conversions != 0 || !b.Earnings.IsZero() {
		t.Errorf("empty day not zero-filled: %+v", b)
	}
	if b := buckets[1]; b.Clicks != 5 || b.Conversions != 1 {
		t.Errorf("2025-01-02 bucket = %+v, want 5 clicks / 1 conversion", b)
	}
	if b := buckets[2]; !b.Earnings.Equal(decimal.NewFromFloat(12.50)) {
		t.Errorf("2025-01-03 earnings = %s, want 12.50", b.Earnings)
	}
	if b := buckets[3]; b.Period != "2025-01-04" {
		t.Errorf("last bucket period = %q, want 2025-01-04", b.Period)
	}
}

func TestEnumeratePeriodsUsesUTCBoundaries(t *testing.T) {
	// 01:00 on March 1st at UTC+13 is still February 28th in UTC; bucket
	// labels must follow the UTC day, matching the store's rollups.
	loc := time.FixedZone("UTC+13", 13*3600)
	start := time.Date(2025, 3, 1, 1, 0, 0, 0, loc)
	end := time.Date(2025, 3, 2, 1, 0, 0, 0, loc)

	periods, err := EnumeratePeriods(GranularityDay, start, end)
	if err != nil {
		t.Fatalf("EnumeratePeriods returned error: %v", err)
	}
	want := []string{"2025-02-28", "2025-03-01"}
	if len(periods) != len(want) {
		t.Fatalf("expected %d periods, got %d", len(want), len(periods))
	}
	for i, p := range periods {
		if label := PeriodLabel(GranularityDay, p); label != want[i] {
			t.Errorf("period %d label = %q, want %q", i, label, want[i])
		}
	}
}

func TestValidateSpan(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateSpan(GranularityDay, start, start.AddDate(1, 0, 0)); err != nil {
		t.Errorf("one-year daily span should be allowed, got %v", err)
	}
	if err := ValidateSpan(GranularityDay, start, start.AddDate(2, 0, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("two-year daily span should be rejected, got %v", err)
	}
	if err := ValidateSpan(GranularityMonth, start, start.AddDate(3, 0, 0)); err != nil {
		t.Errorf("three-year monthly span should be allowed, got %v", err)
	}
	if err := ValidateSpan(GranularityMonth, start, start.AddDate(10, 0, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ten-year monthly span should be rejected, got %v", err)
	}
	if err := ValidateSpan(GranularityDay, start, start.AddDate(0, 0, -1)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed range should be rejected, got %v", err)
	}
	if err := ValidateSpan(Granularity("week"), start, start); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("unknown granularity should be rejected, got %v", err)
	}
}

func TestPeriodLabelFormats(t *testing.T) {
	p := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	if got := PeriodLabel(GranularityDay, p); got != "2025-07-09" {
		t.Errorf("day label = %q, want 2025-07-09", got)
	}
	if got := PeriodLabel(GranularityMonth, p); got != "Jul 2025" {
		t.Errorf("month label = %q, want Jul 2025", got)
	}
}
