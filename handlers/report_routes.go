// handlers/report_routes.go
package handlers

import (
	"fmt"
	"time"

	"affiliate-dashboard-system/middleware"
	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReportRoutes(app *fiber.App, reportService *services.ReportService) {
	secured := app.Group("/reports", middleware.AffiliateContextMiddleware())

	secured.Post("/generate", func(c *fiber.Ctx) error {
		var req struct {
			Type   string `json:"type"`
			Format string `json:"format"`
			Start  string `json:"start"`
			End    string `json:"end"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		start, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be YYYY-MM-DD"})
		}
		end, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be YYYY-MM-DD"})
		}
		// Range is inclusive of the whole end day.
		end = end.Add(24*time.Hour - time.Nanosecond)

		reportType := services.ReportType(req.Type)

		switch req.Format {
		case "", "csv":
			body, filename, err := reportService.GenerateCSV(callerID(c), callerID(c), reportType, start, end)
			if err != nil {
				return failWith(c, err, "Failed to generate report")
			}
			c.Set("Content-Type", "text/csv")
			c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			return c.Send(body)
		case "xlsx":
			url, err := reportService.GenerateXLSX(callerID(c), callerID(c), reportType, start, end)
			if err != nil {
				return failWith(c, err, "Failed to generate report")
			}
			return c.JSON(fiber.Map{"success": true, "url": url})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format must be csv or xlsx"})
		}
	})
}
