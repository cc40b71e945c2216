// middleware/service_token.go
package middleware

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenMiddleware guards internal routes (conversion ingestion,
// earning approval) that only sibling services may call. The shared token
// comes from the environment; missing config is fatal at startup.
func ServiceTokenMiddleware() fiber.Handler {
	expectedToken := os.Getenv("AFFILIATE_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ AFFILIATE_SERVICE_TOKEN is not set — internal routes cannot authenticate callers")
	}

	return func(c *fiber.Ctx) error {
		token := c.Get("X-Service-Token")
		if token == "" || token != expectedToken {
			log.Printf("🚫 [SERVICE_AUTH] Rejected internal call to %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}
		return c.Next()
	}
}
