package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

const adminLocal = "admin"

// MarkAdmin flags requests coming from an unlocked admin session.
func MarkAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(sessionCookie); sid != "" {
			c.Locals(adminLocal, auth.IsAdmin(c.UserContext(), sid))
		}
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sessionCookie)
		if sid == "" || !auth.IsAdmin(c.UserContext(), sid) {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return jsonError(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}
