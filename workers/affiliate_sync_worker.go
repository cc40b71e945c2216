// workers/affiliate_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"affiliate-dashboard-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredAffiliateProfile matches the JSON shape the identity service
// exposes on its profile sync endpoint.
type MirroredAffiliateProfile struct {
	ExternalID     string    `json:"external_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CommissionRate string    `json:"commission_rate"`
	AccountStatus  string    `json:"account_status"`
	PaymentMethod  string    `json:"payment_method"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type getProfileChangesResponse struct {
	Affiliates []MirroredAffiliateProfile `json:"affiliates"`
}

// AffiliateSyncWorker mirrors affiliate profiles from the identity service
// into the local affiliates table. Registration, login and settings edits
// happen over there; this worker is the only writer of affiliate rows here.
type AffiliateSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewAffiliateSyncWorker(db *gorm.DB, identityBaseURL, endpointPath, serviceToken string) *AffiliateSyncWorker {
	return &AffiliateSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      identityBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *AffiliateSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Affiliate Sync Worker (identity service → affiliates)…")
	go w.run(ctx)
}

func (w *AffiliateSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial affiliate sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Affiliate sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Affiliate Sync Worker stopped")
			return
		}
	}
}

func (w *AffiliateSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM affiliates WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *AffiliateSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid identity service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to identity service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response getProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode identity service response: %w", err)
	}

	if len(response.Affiliates) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d affiliate profile(s)…", len(response.Affiliates))

	var upsertCount, errorCount int
	for _, remote := range response.Affiliates {
		rate, rateErr := decimal.NewFromString(remote.CommissionRate)
		if rateErr != nil {
			rate = decimal.Zero
		}

		local := models.Affiliate{
			ExternalID:     remote.ExternalID,
			Name:           remote.Name,
			Email:          remote.Email,
			CommissionRate: rate,
			Status:         mapAccountStatus(remote.AccountStatus),
			PaymentMethod:  remote.PaymentMethod,
			CreatedAt:      remote.CreatedAt,
			UpdatedAt:      remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "email", "commission_rate", "status", "payment_method", "updated_at",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert affiliate (external_id=%q): %v", remote.ExternalID, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d affiliate(s) (%d upserted, %d errors)", len(response.Affiliates), upsertCount, errorCount)
	return nil
}

// mapAccountStatus folds the identity service's account states onto the
// local enum; anything unknown stays pending until support sorts it out.
func mapAccountStatus(remote string) models.AffiliateStatus {
	switch remote {
	case "active", "verified":
		return models.AffiliateStatusActive
	case "suspended", "banned", "deactivated":
		return models.AffiliateStatusSuspended
	default:
		return models.AffiliateStatusPending
	}
}
