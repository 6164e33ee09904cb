package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionCookie = "sid"

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sessionCookie)
	if sid == "" {
		sid = uuid.NewString()
		setSID(c, sid)
	}
	return sid
}

func setSID(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
	})
}
