// handlers/link_routes.go
package handlers

import (
	"affiliate-dashboard-system/middleware"
	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLinkRoutes(app *fiber.App, linkService *services.LinkService, statsService *services.StatsService) {
	secured := app.Group("/links", middleware.AffiliateContextMiddleware())

	secured.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Name      string `json:"name"`
			TargetURL string `json:"target_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		link, err := linkService.Create(callerID(c), req.Name, req.TargetURL)
		if err != nil {
			return failWith(c, err, "Failed to create affiliate link")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"link":        link,
			"tracked_url": linkService.TrackedURL(link),
		})
	})

	secured.Get("/", func(c *fiber.Ctx) error {
		includeInactive := c.QueryBool("include_inactive", false)
		links, err := linkService.List(callerID(c), callerID(c), includeInactive)
		if err != nil {
			return failWith(c, err, "Failed to fetch affiliate links")
		}
		return c.JSON(links)
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		if err := linkService.Deactivate(callerID(c), c.Params("id")); err != nil {
			return failWith(c, err, "Failed to deactivate affiliate link")
		}
		return c.JSON(fiber.Map{"success": true})
	})

	secured.Get("/:id/stats", func(c *fiber.Ctx) error {
		summary, err := statsService.LinkStats(callerID(c), c.Params("id"))
		if err != nil {
			return failWith(c, err, "Failed to fetch link stats")
		}
		return c.JSON(summary)
	})

	secured.Get("/:id/qr", func(c *fiber.Ctx) error {
		png, err := linkService.QRCode(callerID(c), c.Params("id"))
		if err != nil {
			return failWith(c, err, "Failed to generate QR code")
		}
		c.Set("Content-Type", "image/png")
		return c.Send(png)
	})
}
