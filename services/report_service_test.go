package services

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateCSVRejectsCrossTenant(t *testing.T) {
	s := NewReportService(nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	if _, _, err := s.GenerateCSV("aff-1", "aff-2", ReportTypeClicks, start, end); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for cross-tenant report, got %v", err)
	}
}

func TestGenerateCSVRejectsReversedRange(t *testing.T) {
	s := NewReportService(nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, _, err := s.GenerateCSV("aff-1", "aff-1", ReportTypeEarnings, start, start.AddDate(0, 0, -1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for reversed range, got %v", err)
	}
}

func TestReportTotalLabelLocalizesCount(t *testing.T) {
	s := NewReportService(nil)
	if got := s.totalLabel(1234); got != "Total (1,234 earnings)" {
		t.Fatalf("totalLabel(1234) = %q, want grouped digits", got)
	}
}

func TestGenerateXLSXRejectsUnknownType(t *testing.T) {
	s := NewReportService(nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.GenerateXLSX("aff-1", "aff-1", ReportType("refunds"), start, start); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for unknown report type, got %v", err)
	}
}
