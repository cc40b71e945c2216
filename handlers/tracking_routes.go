// handlers/tracking_routes.go
package handlers

import (
	"log"

	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupTrackingRoutes registers the public telemetry ingress. These
// endpoints are fired from tracked pages and are deliberately unauthenticated
// untrusted input: nothing recorded here is authoritative for payment until
// the conversion linker and the approval gate have had their say.
func SetupTrackingRoutes(app *fiber.App, eventService *services.EventService, linkService *services.LinkService) {
	// Share-URL redirect: record the click, send the visitor on. A dead or
	// deactivated code still redirects nowhere useful, so 404 is fine there.
	app.Get("/t/:code", func(c *fiber.Ctx) error {
		link, err := linkService.ByTrackingCode(c.Params("code"))
		if err != nil {
			return failWith(c, err, "Unknown tracking link")
		}

		if _, err := eventService.RecordClick(link.AffiliateID, &link.ID, c.IP(), c.Get("User-Agent"), c.Get("Referer")); err != nil {
			// Losing one click is better than losing the visitor.
			log.Printf("⚠️ [TRACKING] Failed to record redirect click for link %s: %v", link.ID, err)
		}

		return c.Redirect(link.TargetURL, fiber.StatusFound)
	})

	app.Post("/track/click", func(c *fiber.Ctx) error {
		var req struct {
			AffiliateID string  `json:"affiliate_id"`
			LinkID      *string `json:"link_id"`
			Referrer    string  `json:"referrer"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.AffiliateID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Affiliate ID is required"})
		}

		referrer := req.Referrer
		if referrer == "" {
			referrer = c.Get("Referer")
		}

		click, err := eventService.RecordClick(req.AffiliateID, req.LinkID, c.IP(), c.Get("User-Agent"), referrer)
		if err != nil {
			return failWith(c, err, "Failed to track click")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"click_id": click.ID,
		})
	})

	app.Post("/track/visit", func(c *fiber.Ctx) error {
		var req struct {
			AffiliateID string  `json:"affiliate_id"`
			ClickID     *string `json:"click_id"`
			Referrer    string  `json:"referrer"`
			Duration    int     `json:"duration"`
			PageViews   int     `json:"page_views"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.AffiliateID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Affiliate ID is required"})
		}

		visit, err := eventService.RecordVisit(req.AffiliateID, req.ClickID, req.Referrer, req.Duration, req.PageViews)
		if err != nil {
			return failWith(c, err, "Failed to track visit")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"visit_id": visit.ID,
		})
	})
}
