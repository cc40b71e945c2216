package services

import (
	"testing"
	"time"

	"affiliate-dashboard-system/models"
)

func click(id string, ts time.Time, converted bool) models.ClickEvent {
	return models.ClickEvent{ID: id, AffiliateID: "aff-1", Timestamp: ts, Converted: converted}
}

func TestSelectAttributableClickPicksLastTouch(t *testing.T) {
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	earnedAt := base.Add(2 * time.Hour)

	clicks := []models.ClickEvent{
		click("c-old", base.Add(-25*time.Hour), false), // outside window
		click("c-first", base, false),
		click("c-last", base.Add(1*time.Hour), false),
	}

	got := SelectAttributableClick(clicks, earnedAt, 24*time.Hour)
	if got == nil {
		t.Fatal("expected a click, got nil")
	}
	if got.ID != "c-last" {
		t.Errorf("selected %s, want the most recent in-window click c-last", got.ID)
	}
}

func TestSelectAttributableClickIgnoresFutureClicks(t *testing.T) {
	earnedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	clicks := []models.ClickEvent{
		click("c-after", earnedAt.Add(1*time.Minute), false),
		click("c-before", earnedAt.Add(-1*time.Hour), false),
	}

	got := SelectAttributableClick(clicks, earnedAt, 24*time.Hour)
	if got == nil || got.ID != "c-before" {
		t.Fatalf("expected c-before, got %+v", got)
	}
}

func TestSelectAttributableClickSkipsConverted(t *testing.T) {
	earnedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	clicks := []models.ClickEvent{
		click("c-claimed", earnedAt.Add(-30*time.Minute), true),
		click("c-free", earnedAt.Add(-2*time.Hour), false),
	}

	got := SelectAttributableClick(clicks, earnedAt, 24*time.Hour)
	if got == nil || got.ID != "c-free" {
		t.Fatalf("expected c-free, got %+v", got)
	}
}

func TestSelectAttributableClickWindowBoundary(t *testing.T) {
	earnedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	// Exactly at the cutoff is still inside the window.
	onEdge := []models.ClickEvent{click("c-edge", earnedAt.Add(-window), false)}
	if got := SelectAttributableClick(onEdge, earnedAt, window); got == nil || got.ID != "c-edge" {
		t.Fatalf("click at window edge should qualify, got %+v", got)
	}

	beyond := []models.ClickEvent{click("c-gone", earnedAt.Add(-window-time.Second), false)}
	if got := SelectAttributableClick(beyond, earnedAt, window); got != nil {
		t.Fatalf("click past window should not qualify, got %s", got.ID)
	}
}

func TestSelectAttributableClickNoCandidates(t *testing.T) {
	earnedAt := time.Now().UTC()
	if got := SelectAttributableClick(nil, earnedAt, 24*time.Hour); got != nil {
		t.Fatalf("expected nil for empty candidate set, got %s", got.ID)
	}
}

func TestResolveAttributionIsIdempotent(t *testing.T) {
	existing := "c-linked"
	earnedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	earning := models.EarningRecord{
		ID:            "e-1",
		AffiliateID:   "aff-1",
		LinkedClickID: &existing,
		CreatedAt:     earnedAt,
	}
	// A newer eligible click must not displace the existing attribution.
	candidates := []models.ClickEvent{click("c-newer", earnedAt.Add(-time.Minute), false)}

	claim, linked := ResolveAttribution(earning, candidates, 24*time.Hour)
	if claim != nil {
		t.Fatalf("already-linked earning claimed a new click %s", claim.ID)
	}
	if linked == nil || *linked != existing {
		t.Fatalf("expected the existing click id %q back, got %v", existing, linked)
	}
}

func TestResolveAttributionClaimsLastTouch(t *testing.T) {
	earnedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	earning := models.EarningRecord{ID: "e-1", AffiliateID: "aff-1", CreatedAt: earnedAt}
	candidates := []models.ClickEvent{
		click("c-early", earnedAt.Add(-3*time.Hour), false),
		click("c-late", earnedAt.Add(-1*time.Hour), false),
	}

	claim, linked := ResolveAttribution(earning, candidates, 24*time.Hour)
	if claim == nil || claim.ID != "c-late" {
		t.Fatalf("expected claim of c-late, got %+v", claim)
	}
	if linked == nil || *linked != "c-late" {
		t.Fatalf("expected linked id c-late, got %v", linked)
	}
}

func TestResolveAttributionNoCandidates(t *testing.T) {
	earning := models.EarningRecord{ID: "e-1", AffiliateID: "aff-1", CreatedAt: time.Now().UTC()}

	claim, linked := ResolveAttribution(earning, nil, 24*time.Hour)
	if claim != nil || linked != nil {
		t.Fatalf("untracked conversion should stay unlinked, got claim=%v linked=%v", claim, linked)
	}
}

func TestQualifyClicksFiltersByVisitCorroboration(t *testing.T) {
	ts := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	clicks := []models.ClickEvent{
		click("c-1", ts, false),
		click("c-2", ts.Add(time.Minute), false),
		click("c-3", ts.Add(2*time.Minute), false),
	}

	got := QualifyClicks(clicks, []string{"c-2"})
	if len(got) != 1 || got[0].ID != "c-2" {
		t.Fatalf("expected only the corroborated click c-2, got %+v", got)
	}

	if got := QualifyClicks(clicks, nil); len(got) != 0 {
		t.Fatalf("no qualifying visits should leave no eligible clicks, got %d", len(got))
	}
}
