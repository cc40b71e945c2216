package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"affiliate-dashboard-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkerService attributes a conversion (earning) to the most recent
// eligible click for the same affiliate — last-touch attribution inside a
// configurable window. When MinPageViews > 0, a click is eligible only if a
// visit referencing it reached that many page views.
type LinkerService struct {
	DB           *gorm.DB
	Window       time.Duration
	MinPageViews int
}

func NewLinkerService(db *gorm.DB, window time.Duration, minPageViews int) *LinkerService {
	return &LinkerService{DB: db, Window: window, MinPageViews: minPageViews}
}

// LinkConversion links an earning to a prior click and marks the click
// converted. Idempotent: a second call for an already-linked earning
// returns the same click id and marks nothing new. The select and the flag
// update run in one transaction with the earning row locked, so concurrent
// linker runs for the same earning cannot pick two different clicks.
// No eligible click is not an error — direct sales arrive untracked.
func (s *LinkerService) LinkConversion(earningID string) (*string, error) {
	var linkedID *string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var earning models.EarningRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", earningID).First(&earning).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("earning %s: %w", earningID, ErrNotFound)
			}
			return ErrUnavailable
		}

		var candidates []models.ClickEvent
		if earning.LinkedClickID == nil {
			var err error
			candidates, err = s.eligibleClicks(tx, earning)
			if err != nil {
				return err
			}
		}

		claim, resolved := ResolveAttribution(earning, candidates, s.Window)
		linkedID = resolved
		if claim == nil {
			return nil
		}

		// Conditional update guards against a racing linker that already
		// claimed this click for a different earning.
		res := tx.Model(&models.ClickEvent{}).
			Where("id = ? AND converted = false", claim.ID).
			Update("converted", true)
		if res.Error != nil {
			return ErrUnavailable
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("click %s already claimed: %w", claim.ID, ErrConflict)
		}

		if err := tx.Model(&models.EarningRecord{}).
			Where("id = ?", earning.ID).
			Update("linked_click_id", claim.ID).Error; err != nil {
			return ErrUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return linkedID, nil
}

func (s *LinkerService) eligibleClicks(tx *gorm.DB, earning models.EarningRecord) ([]models.ClickEvent, error) {
	cutoff := earning.CreatedAt.Add(-s.Window)

	var clicks []models.ClickEvent
	if err := tx.Where("affiliate_id = ? AND converted = false AND timestamp <= ? AND timestamp >= ?",
		earning.AffiliateID, earning.CreatedAt, cutoff).
		Order("timestamp DESC").Limit(50).Find(&clicks).Error; err != nil {
		return nil, ErrUnavailable
	}
	if s.MinPageViews <= 0 || len(clicks) == 0 {
		return clicks, nil
	}

	ids := make([]string, len(clicks))
	for i, c := range clicks {
		ids[i] = c.ID
	}
	var qualifiedIDs []string
	if err := tx.Model(&models.VisitEvent{}).
		Distinct("click_id").
		Where("click_id IN ? AND page_views >= ?", ids, s.MinPageViews).
		Pluck("click_id", &qualifiedIDs).Error; err != nil {
		return nil, ErrUnavailable
	}
	return QualifyClicks(clicks, qualifiedIDs), nil
}

// ResolveAttribution applies the linker's decision rules to an earning and
// its candidate clicks: an already-linked earning keeps its click, otherwise
// the last eligible touch wins. Returns the click to claim (nil when the
// store needs no change) and the click id the earning ends up linked to.
// Pure.
func ResolveAttribution(earning models.EarningRecord, candidates []models.ClickEvent, window time.Duration) (*models.ClickEvent, *string) {
	if earning.LinkedClickID != nil {
		return nil, earning.LinkedClickID
	}
	if click := SelectAttributableClick(candidates, earning.CreatedAt, window); click != nil {
		return click, &click.ID
	}
	return nil, nil
}

// QualifyClicks keeps only clicks corroborated by a qualifying visit. Pure.
func QualifyClicks(clicks []models.ClickEvent, qualifiedIDs []string) []models.ClickEvent {
	set := make(map[string]struct{}, len(qualifiedIDs))
	for _, id := range qualifiedIDs {
		set[id] = struct{}{}
	}
	var out []models.ClickEvent
	for _, c := range clicks {
		if _, ok := set[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SelectAttributableClick picks the most recent unconverted click with
// timestamp ≤ earnedAt and inside the window. Pure; exported for the sweep
// worker and for tests.
func SelectAttributableClick(clicks []models.ClickEvent, earnedAt time.Time, window time.Duration) *models.ClickEvent {
	cutoff := earnedAt.Add(-window)
	var best *models.ClickEvent
	for i := range clicks {
		c := &clicks[i]
		if c.Converted {
			continue
		}
		if c.Timestamp.After(earnedAt) || c.Timestamp.Before(cutoff) {
			continue
		}
		if best == nil || c.Timestamp.After(best.Timestamp) {
			best = c
		}
	}
	return best
}

// SweepUnlinked re-runs attribution for earnings created inside the window
// that never got linked — a safety net for earnings ingested while their
// click was still in flight. Returns how many got linked.
func (s *LinkerService) SweepUnlinked() (int, error) {
	horizon := time.Now().UTC().Add(-s.Window)

	var pending []models.EarningRecord
	if err := s.DB.Where("linked_click_id IS NULL AND created_at >= ?", horizon).
		Order("created_at ASC").Limit(200).Find(&pending).Error; err != nil {
		return 0, ErrUnavailable
	}

	linked := 0
	for _, e := range pending {
		id, err := s.LinkConversion(e.ID)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				// another run claimed the click first; next sweep retries
				continue
			}
			log.Printf("⚠️ [LINKER] Sweep failed for earning %s: %v", e.ID, err)
			continue
		}
		if id != nil {
			linked++
		}
	}
	return linked, nil
}
