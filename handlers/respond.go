package handlers

import (
	"errors"
	"log"

	"affiliate-dashboard-system/services"

	"github.com/gofiber/fiber/v2"
)

// failWith maps the service error taxonomy onto HTTP statuses. The internal
// error kind is logged, never exposed — callers only see the generic
// message for their operation.
func failWith(c *fiber.Ctx, err error, publicMsg string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidRange), errors.Is(err, services.ErrInvalidTransition):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUnavailable):
		status = fiber.StatusServiceUnavailable
	}

	log.Printf("❌ [HTTP] %s %s → %d: %v", c.Method(), c.Path(), status, err)
	return c.Status(status).JSON(fiber.Map{"error": publicMsg})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("affiliate_id").(string)
	return id
}
