// handlers/earning_routes.go
package handlers

import (
	"time"

	"affiliate-dashboard-system/middleware"
	"affiliate-dashboard-system/models"
	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SetupEarningRoutes registers the internal ingest surface. Conversion
// notifications arrive from the order system, not from affiliates, so the
// whole group sits behind the shared service token.
func SetupEarningRoutes(app *fiber.App, earningService *services.EarningService) {
	internal := app.Group("/internal/earnings", middleware.ServiceTokenMiddleware())

	internal.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			AffiliateID string `json:"affiliate_id"`
			Amount      string `json:"amount"`
			Source      string `json:"source"`
			OccurredAt  string `json:"occurred_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.AffiliateID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Affiliate ID is required"})
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		}

		var occurredAt *time.Time
		if req.OccurredAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "occurred_at must be RFC3339"})
			}
			occurredAt = &parsed
		}

		earning, err := earningService.Create(c.Context(), req.AffiliateID, amount, req.Source, occurredAt)
		if err != nil {
			return failWith(c, err, "Failed to record earning")
		}
		return c.Status(fiber.StatusCreated).JSON(earning)
	})

	internal.Post("/:id/approve", func(c *fiber.Ctx) error {
		earning, err := earningService.Transition(c.Context(), c.Params("id"), models.EarningStatusApproved)
		if err != nil {
			return failWith(c, err, "Failed to approve earning")
		}
		return c.JSON(earning)
	})

	internal.Post("/:id/pay", func(c *fiber.Ctx) error {
		earning, err := earningService.Transition(c.Context(), c.Params("id"), models.EarningStatusPaid)
		if err != nil {
			return failWith(c, err, "Failed to mark earning paid")
		}
		return c.JSON(earning)
	})
}
