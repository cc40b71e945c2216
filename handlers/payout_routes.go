// handlers/payout_routes.go
package handlers

import (
	"affiliate-dashboard-system/middleware"
	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func SetupPayoutRoutes(app *fiber.App, payoutService *services.PayoutService) {
	secured := app.Group("/payouts", middleware.AffiliateContextMiddleware())

	secured.Get("/balance", func(c *fiber.Ctx) error {
		balance, err := payoutService.Balance(callerID(c), callerID(c))
		if err != nil {
			return failWith(c, err, "Failed to fetch balance")
		}
		return c.JSON(fiber.Map{
			"balance": balance.StringFixed(2),
			"minimum": payoutService.Minimum.StringFixed(2),
		})
	})

	secured.Get("/", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		payouts, err := payoutService.List(callerID(c), callerID(c), limit)
		if err != nil {
			return failWith(c, err, "Failed to fetch payouts")
		}
		return c.JSON(payouts)
	})

	secured.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Amount string `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		}

		payout, err := payoutService.Request(c.Context(), callerID(c), callerID(c), amount)
		if err != nil {
			return failWith(c, err, "Failed to request payout")
		}
		return c.Status(fiber.StatusCreated).JSON(payout)
	})
}
