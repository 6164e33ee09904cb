package handlers

import (
	"errors"
	"time"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	Menu *services.MenuService
	Cart *services.CartService
	Auth *services.AuthService
}

type unlockRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

type productRequest struct {
	ID              string  `json:"id" validate:"omitempty,max=64"`
	Name            string  `json:"name" validate:"required,max=80"`
	Description     string  `json:"description" validate:"max=500"`
	Price           float64 `json:"price" validate:"gte=0,lte=100000"`
	CategoryID      string  `json:"categoryId" validate:"omitempty,max=64"`
	Image           string  `json:"image" validate:"omitempty,max=500"`
	Available       *bool   `json:"available"`
	HasStockControl bool    `json:"hasStockControl"`
	Stock           int     `json:"stock" validate:"gte=0"`
}

// valid checks the fields the tags cannot: the optional id uses the same
// format as the product routes and the name may not be blank.
func (r *productRequest) valid() bool {
	if r.ID != "" {
		id, ok := validate.ID(r.ID)
		if !ok {
			return false
		}
		r.ID = id
	}
	name, ok := validate.Name(r.Name)
	r.Name = name
	return ok
}

func (r productRequest) product() domain.Product {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return domain.Product{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		CategoryID:      r.CategoryID,
		Image:           r.Image,
		Available:       available,
		HasStockControl: r.HasStockControl,
		Stock:           r.Stock,
	}
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"omitempty,gte=0"`
	Delta *int `json:"delta"`
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// POST /admin/unlock binds a fresh session id to the admin role. The cart
// of the previous session follows it.
func (h *AdminHandler) Unlock(c *fiber.Ctx) error {
	var req unlockRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		applog.Security(c, "admin.unlock.fail", map[string]any{"reason": "bad_format"})
		return jsonError(c, fiber.StatusUnauthorized, "invalid access code")
	}
	sid := uuid.NewString()
	if _, err := h.Auth.Unlock(c.UserContext(), sid, req.Code); err != nil {
		if errors.Is(err, services.ErrBadCode) || errors.Is(err, services.ErrAdminDisabled) {
			applog.Security(c, "admin.unlock.fail", nil)
			return jsonError(c, fiber.StatusUnauthorized, "invalid access code")
		}
		return fail(c, "admin.unlock.error", err, nil)
	}
	if old := c.Cookies(sessionCookie); old != "" {
		h.Cart.Move(old, sid)
		if err := h.Auth.Lock(c.UserContext(), old); err != nil {
			applog.Error(c, "admin.unlock.unbind.fail", err, nil)
		}
	}
	setSID(c, sid)
	applog.Audit(c, "admin.unlock", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"admin": true})
}

// POST /admin/lock
func (h *AdminHandler) Lock(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Lock(c.UserContext(), sid); err != nil {
		return fail(c, "admin.lock.fail", err, nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "admin.lock", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) draft(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"products":   h.Menu.Products(),
		"categories": h.Menu.Categories(),
		"state":      h.Menu.State(),
		"dirty":      h.Menu.HasUnsavedChanges(),
		"version":    h.Menu.Version(),
		"offline":    h.Menu.Offline(),
	})
}

// GET /admin/menu
func (h *AdminHandler) MenuView(c *fiber.Ctx) error {
	return h.draft(c)
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := parseBody(c, &req); err != nil || !req.valid() {
		return jsonError(c, fiber.StatusBadRequest, "invalid product")
	}
	p, err := h.Menu.AddProduct(req.product())
	if err != nil {
		return fail(c, "admin.product.create.fail", err, map[string]any{"name": req.Name})
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product": p.ID, "name": p.Name})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	var req productRequest
	if err := parseBody(c, &req); err != nil || !req.valid() {
		return jsonError(c, fiber.StatusBadRequest, "invalid product")
	}
	p, err := h.Menu.UpdateProduct(id, req.product())
	if err != nil {
		return fail(c, "admin.product.update.fail", err, map[string]any{"product": id})
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product": id})
	return c.JSON(p)
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	if err := h.Menu.DeleteProduct(id); err != nil {
		return fail(c, "admin.product.delete.fail", err, map[string]any{"product": id})
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /admin/products/:id/toggle
func (h *AdminHandler) ToggleProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, err := h.Menu.ToggleAvailability(id)
	if err != nil {
		return fail(c, "admin.product.toggle.fail", err, map[string]any{"product": id})
	}
	applog.Audit(c, "admin.product.toggle", map[string]any{"product": id, "available": p.Available})
	return c.JSON(p)
}

// PUT /admin/products/:id/stock takes either an absolute stock or a delta.
func (h *AdminHandler) SetStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	var req stockRequest
	if err := parseBody(c, &req); err != nil || (req.Stock == nil && req.Delta == nil) {
		return jsonError(c, fiber.StatusBadRequest, "stock or delta required")
	}

	var (
		p   domain.Product
		err error
	)
	if req.Stock != nil {
		p, err = h.Menu.SetStock(id, *req.Stock)
	} else {
		p, err = h.Menu.AdjustStock(id, *req.Delta)
	}
	if err != nil {
		return fail(c, "admin.stock.fail", err, map[string]any{"product": id})
	}
	applog.Audit(c, "admin.stock.save", map[string]any{"product": id, "stock": p.Stock})
	return c.JSON(p)
}

// POST /admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid category")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid category")
	}
	cat, err := h.Menu.AddCategory(name)
	if err != nil {
		return fail(c, "admin.category.create.fail", err, nil)
	}
	applog.Audit(c, "admin.category.create", map[string]any{"category": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid category id")
	}
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid category")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid category")
	}
	cat, err := h.Menu.UpdateCategory(id, name)
	if err != nil {
		return fail(c, "admin.category.update.fail", err, map[string]any{"category": id})
	}
	applog.Audit(c, "admin.category.update", map[string]any{"category": id, "name": cat.Name})
	return c.JSON(cat)
}

// DELETE /admin/categories/:id also removes the products in the category.
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid category id")
	}
	n, err := h.Menu.DeleteCategory(id)
	if err != nil {
		return fail(c, "admin.category.delete.fail", err, map[string]any{"category": id})
	}
	applog.Audit(c, "admin.category.delete", map[string]any{"category": id, "products": n})
	return c.JSON(fiber.Map{"deletedProducts": n})
}

// POST /admin/publish
func (h *AdminHandler) Publish(c *fiber.Ctx) error {
	force := c.QueryBool("force", false)
	if err := h.Menu.Publish(c.UserContext(), services.PublishOptions{Force: force}); err != nil {
		return fail(c, "admin.menu.publish.fail", err, map[string]any{"force": force})
	}
	applog.Audit(c, "admin.menu.publish", map[string]any{"version": h.Menu.Version(), "force": force})
	return h.draft(c)
}

// POST /admin/discard
func (h *AdminHandler) Discard(c *fiber.Ctx) error {
	if err := h.Menu.Discard(); err != nil {
		return fail(c, "admin.menu.discard.fail", err, nil)
	}
	applog.Audit(c, "admin.menu.discard", nil)
	return h.draft(c)
}

// POST /admin/reload
func (h *AdminHandler) Reload(c *fiber.Ctx) error {
	if err := h.Menu.Reload(c.UserContext()); err != nil {
		return fail(c, "admin.menu.reload.fail", err, nil)
	}
	applog.Audit(c, "admin.menu.reload", map[string]any{"version": h.Menu.Version()})
	return h.draft(c)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return err
	}
	if err := validate.Struct(out); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"path": c.Path()})
		return err
	}
	return nil
}
