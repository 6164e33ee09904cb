package handlers

import (
	"fmt"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=64"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

func deliveryParam(c *fiber.Ctx) (domain.DeliveryType, error) {
	return domain.ParseDeliveryType(c.Query("delivery"))
}

func (h *CartHandler) view(c *fiber.Ctx, sid string, status int) error {
	dt, err := deliveryParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid delivery type")
	}
	return c.Status(status).JSON(h.Cart.Totals(sid, dt))
}

// GET /api/v1/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	return h.view(c, ensureSID(c), fiber.StatusOK)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	if _, err := h.Cart.Add(sid, req.ProductID); err != nil {
		return fail(c, "cart.add.fail", err, map[string]any{"product": req.ProductID})
	}
	applog.Info(c, "cart.add", map[string]any{"product": req.ProductID})
	return h.view(c, sid, fiber.StatusCreated)
}

// PUT /api/v1/cart/items/:id
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil || *req.Quantity > validate.MaxQty {
		applog.Security(c, "validation.fail", map[string]any{"field": "quantity"})
		return jsonError(c, fiber.StatusBadRequest, fmt.Sprintf("quantity must be between 0 and %d", validate.MaxQty))
	}
	// on ErrStockLimit the capped quantity is already in the cart
	if _, err := h.Cart.SetQuantity(sid, id, *req.Quantity); err != nil {
		return fail(c, "cart.update.fail", err, map[string]any{"product": id})
	}
	return h.view(c, sid, fiber.StatusOK)
}

// DELETE /api/v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	h.Cart.Remove(sid, id)
	return h.view(c, sid, fiber.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.Clear(ensureSID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
