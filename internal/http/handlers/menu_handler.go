package handlers

import (
	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type MenuHandler struct {
	Menu *services.MenuService
	Cart *services.CartService
	Shop config.ShopConfig
}

// GET /
func (h *MenuHandler) Home(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return render(c, "home", fiber.Map{
		"Shop":      h.Shop,
		"Sections":  h.Menu.Sections(),
		"Offline":   h.Menu.Offline(),
		"ItemCount": h.Cart.ItemCount(sid),
		"Fee":       h.Shop.DeliveryFee.StringFixed(2),
	})
}

// GET /api/v1/menu
func (h *MenuHandler) List(c *fiber.Ctx) error {
	sections := h.Menu.Sections()
	if sections == nil {
		sections = []domain.MenuSection{}
	}
	return c.JSON(fiber.Map{
		"sections": sections,
		"offline":  h.Menu.Offline(),
		"version":  h.Menu.Version(),
	})
}

// GET /api/v1/products/:id
func (h *MenuHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	p, ok := h.Menu.Product(id)
	if !ok || !p.Available {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	return c.JSON(fiber.Map{
		"product":  p,
		"category": domain.CategoryName(p, h.Menu.Categories()),
	})
}
