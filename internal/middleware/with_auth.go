package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-writing-api/internal/utils"
)

// RequireUser rejects requests whose token did not resolve to a user identifier.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch id := c.Locals("user_id").(type) {
		case uint:
			if id != 0 {
				return c.Next()
			}
		case int:
			if id > 0 {
				return c.Next()
			}
		}
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
}
