// handlers/stats_routes.go
package handlers

import (
	"time"

	"affiliate-dashboard-system/middleware"
	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupStatsRoutes registers the dashboard read surface. The affiliate auth
// middleware is attached per prefix, never at "/" — a root-prefixed group
// would leak onto every route registered after it, including the
// service-token internal ones.
func SetupStatsRoutes(app *fiber.App, statsService *services.StatsService, earningService *services.EarningService) {
	stats := app.Group("/stats", middleware.AffiliateContextMiddleware())

	stats.Get("/", func(c *fiber.Ctx) error {
		windowDays := c.QueryInt("window_days", 30)
		summary, err := statsService.Stats(c.Context(), callerID(c), callerID(c), windowDays)
		if err != nil {
			return failWith(c, err, "Failed to fetch affiliate stats")
		}
		return c.JSON(summary)
	})

	// Explicit tenant check: an affiliate may name an id in the path, but
	// only their own.
	stats.Get("/:affiliateId", func(c *fiber.Ctx) error {
		windowDays := c.QueryInt("window_days", 30)
		summary, err := statsService.Stats(c.Context(), callerID(c), c.Params("affiliateId"), windowDays)
		if err != nil {
			return failWith(c, err, "Failed to fetch affiliate stats")
		}
		return c.JSON(summary)
	})

	earnings := app.Group("/earnings", middleware.AffiliateContextMiddleware())

	earnings.Get("/summary", func(c *fiber.Ctx) error {
		summary, err := statsService.Earnings(c.Context(), callerID(c), callerID(c))
		if err != nil {
			return failWith(c, err, "Failed to fetch earnings")
		}
		return c.JSON(summary)
	})

	earnings.Get("/", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		records, err := earningService.List(callerID(c), callerID(c), limit)
		if err != nil {
			return failWith(c, err, "Failed to fetch earnings")
		}
		return c.JSON(records)
	})

	app.Get("/aggregate", middleware.AffiliateContextMiddleware(), func(c *fiber.Ctx) error {
		granularity := services.Granularity(c.Query("granularity", "day"))

		start, err := time.Parse("2006-01-02", c.Query("start"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be YYYY-MM-DD"})
		}
		end, err := time.Parse("2006-01-02", c.Query("end"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be YYYY-MM-DD"})
		}

		buckets, err := statsService.AggregateRange(callerID(c), callerID(c), granularity, start, end)
		if err != nil {
			return failWith(c, err, "Failed to aggregate stats")
		}
		return c.JSON(buckets)
	})
}
