package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

type checkoutRequest struct {
	Name          string `json:"name" validate:"max=80"`
	Phone         string `json:"phone" validate:"max=20"`
	Address       string `json:"address" validate:"max=200"`
	PaymentMethod string `json:"paymentMethod"`
	DeliveryType  string `json:"deliveryType" validate:"omitempty,oneof=pickup delivery"`
}

func parseCheckout(c *fiber.Ctx) (domain.Customer, domain.DeliveryType, error) {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Customer{}, "", err
	}
	if err := validate.Struct(req); err != nil {
		return domain.Customer{}, "", err
	}
	dt, err := domain.ParseDeliveryType(req.DeliveryType)
	if err != nil {
		return domain.Customer{}, "", err
	}
	return domain.Customer{
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}, dt, nil
}

// POST /api/v1/checkout/preview
func (h *CheckoutHandler) Preview(c *fiber.Ctx) error {
	sid := ensureSID(c)
	customer, dt, err := parseCheckout(c)
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "checkout"})
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	r, err := h.Checkout.Preview(sid, customer, dt)
	if err != nil {
		return fail(c, "checkout.preview.fail", err, nil)
	}
	return c.JSON(r)
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Confirm(c *fiber.Ctx) error {
	sid := ensureSID(c)
	customer, dt, err := parseCheckout(c)
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "checkout"})
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	r, err := h.Checkout.Confirm(c.UserContext(), sid, customer, dt)
	if err != nil {
		return fail(c, "checkout.fail", err, map[string]any{"delivery": dt})
	}
	applog.Audit(c, "checkout.confirm", map[string]any{
		"delivery":     dt,
		"items":        r.Totals.ItemCount,
		"total":        r.Totals.Total.StringFixed(2),
		"stock_errors": len(r.StockErrors),
	})
	return c.JSON(r)
}
