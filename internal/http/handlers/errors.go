package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

const genericError = "Something went wrong. Please try again."

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// statusFor maps service errors to a status and a message safe to show.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUnknownProduct):
		return fiber.StatusNotFound, "product not found"
	case errors.Is(err, services.ErrCategoryNotFound):
		return fiber.StatusNotFound, "category not found"
	case errors.Is(err, services.ErrUnavailable):
		return fiber.StatusConflict, "product unavailable"
	case errors.Is(err, services.ErrStockLimit):
		return fiber.StatusConflict, "not enough stock"
	case errors.Is(err, services.ErrDuplicateID):
		return fiber.StatusConflict, "id already in use"
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusBadRequest, "cart is empty"
	case errors.Is(err, services.ErrInvalidCustomer):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, "menu changed remotely, publish with force=true to overwrite"
	case errors.Is(err, services.ErrPublishing):
		return fiber.StatusConflict, "publish in progress"
	case errors.Is(err, services.ErrOffline):
		return fiber.StatusServiceUnavailable, "menu store unavailable"
	}
	return fiber.StatusInternalServerError, genericError
}

// fail logs err under action and answers with the mapped status.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	status, msg := statusFor(err)
	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action, err, fields)
	} else {
		applog.Info(c, action, withError(fields, err))
	}
	return jsonError(c, status, msg)
}

func withError(fields map[string]any, err error) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["reason"] = err.Error()
	return out
}
