package handlers

import (
	"context"
	"io"
	"strings"
	"time"

	applog "storefront/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type AppOptions struct {
	Views fiber.Views
	// AccessLog receives one line per request; nil disables it.
	AccessLog io.Writer
	// RequestsPerMinute is the global per-IP limit. Zero means 60.
	RequestsPerMinute int
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin")
}

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		Views: opts.Views,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := genericError
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				code, msg = fe.Code, fe.Message
			} else {
				applog.Error(c, "server.error", err, nil)
			}
			if isAPI(c) {
				return jsonError(c, code, msg)
			}
			if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
				return c.Status(code).SendString(msg)
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	perMinute := opts.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: opts.AccessLog}))
	}
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}))
	app.Use(MarkAdmin(d.Auth))

	Register(app, d)
	return app
}

// Register mounts the storefront and admin routes on app.
func Register(app *fiber.App, d *Deps) {
	app.Get("/", d.MenuHandler.Home)

	api := app.Group("/api/v1")
	api.Get("/menu", d.MenuHandler.List)
	api.Get("/products/:id", d.MenuHandler.Product)

	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart/items", d.CartHandler.AddItem)
	api.Put("/cart/items/:id", d.CartHandler.UpdateItem)
	api.Delete("/cart/items/:id", d.CartHandler.RemoveItem)
	api.Delete("/cart", d.CartHandler.Clear)

	checkoutLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|checkout"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.checkout.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	})
	api.Post("/checkout/preview", d.CheckoutHandler.Preview)
	api.Post("/checkout", checkoutLimiter, d.CheckoutHandler.Confirm)

	// Unlock throttled, the code is short
	app.Post("/admin/unlock", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|unlock"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.unlock.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "too many attempts, try again later")
		},
	}), d.AdminHandler.Unlock)

	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Post("/lock", d.AdminHandler.Lock)
	admin.Get("/menu", d.AdminHandler.MenuView)
	admin.Post("/products", d.AdminHandler.CreateProduct)
	admin.Put("/products/:id", d.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", d.AdminHandler.DeleteProduct)
	admin.Post("/products/:id/toggle", d.AdminHandler.ToggleProduct)
	admin.Put("/products/:id/stock", d.AdminHandler.SetStock)
	admin.Post("/categories", d.AdminHandler.CreateCategory)
	admin.Put("/categories/:id", d.AdminHandler.UpdateCategory)
	admin.Delete("/categories/:id", d.AdminHandler.DeleteCategory)
	admin.Post("/publish", d.AdminHandler.Publish)
	admin.Post("/discard", d.AdminHandler.Discard)
	admin.Post("/reload", d.AdminHandler.Reload)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			applog.Error(c, "health.store.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true, "offline": d.Menu.Offline(), "version": d.Menu.Version()})
	})
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return notFoundPage(c, "Page not found")
	})
}
