// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"affiliate-dashboard-system/utils"

	"github.com/gofiber/fiber/v2"
)

// AffiliateContextMiddleware resolves the authenticated affiliate identity
// from the bearer token issued by the identity service. It fails closed:
// dashboard routes without a valid token never reach a handler.
func AffiliateContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("🚫 [AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			log.Printf("❌ [AUTH] Invalid token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		c.Locals("affiliate_id", claims.AffiliateID)
		return c.Next()
	}
}
