package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
)

// Registration order in main mounts the dashboard routes before the internal
// ones; the internal ingest must still answer to the service token alone.
func TestInternalIngestNotBlockedByAffiliateAuth(t *testing.T) {
	t.Setenv("AFFILIATE_SERVICE_TOKEN", "sync-secret")

	app := fiber.New()
	SetupStatsRoutes(app, &services.StatsService{}, &services.EarningService{})
	SetupEarningRoutes(app, &services.EarningService{})

	req := httptest.NewRequest("POST", "/internal/earnings", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", "sync-secret")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode == fiber.StatusUnauthorized {
		t.Fatal("internal ingest rejected as unauthenticated despite a valid service token")
	}
	// Malformed body stops at validation, proving the handler was reached.
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestInternalIngestRequiresServiceToken(t *testing.T) {
	t.Setenv("AFFILIATE_SERVICE_TOKEN", "sync-secret")

	app := fiber.New()
	SetupEarningRoutes(app, &services.EarningService{})

	req := httptest.NewRequest("POST", "/internal/earnings", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without service token, got %d", resp.StatusCode)
	}
}

func TestDashboardRoutesFailClosed(t *testing.T) {
	app := fiber.New()
	SetupStatsRoutes(app, &services.StatsService{}, &services.EarningService{})

	for _, path := range []string{"/stats", "/earnings", "/earnings/summary", "/aggregate"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request to %s failed: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, resp.StatusCode)
		}
	}
}
