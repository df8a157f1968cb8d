package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/auth"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
	"github.com/wichananm65/sheshape-backend/internal/validation"
)

var sortableFields = map[string]string{
	"id":             "id",
	"name":           "name",
	"price":          "price",
	"inventoryCount": "inventory_count",
	"createdAt":      "created_at",
}

type Handler struct {
	service    *Service
	validator  *validation.Validator
	allowReset bool
}

func NewHandler(service *Service, v *validation.Validator, allowReset bool) *Handler {
	return &Handler{service: service, validator: v, allowReset: allowReset}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/products", h.getActiveProducts)
	app.Get("/api/products/in-stock", h.getInStock)
	app.Get("/api/products/search", h.search)
	app.Get("/api/products/category/:category", h.getByCategory)
	app.Get("/api/products/:id<int>", h.getProduct)

	// dev-only endpoint to reset products, enabled when ALLOW_RESET_PRODUCTS=1
	app.Post("/dev/reset-products", h.resetProducts)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	admin := auth.RequireRole(auth.AdminRole)
	app.Get("/api/products/all", admin, h.getAllProducts)
	app.Post("/api/products", admin, h.createProduct)
	app.Put("/api/products/:id<int>", admin, h.updateProduct)
	app.Patch("/api/products/:id<int>/activate", admin, h.activateProduct)
	app.Patch("/api/products/:id<int>/deactivate", admin, h.deactivateProduct)
	app.Delete("/api/products/:id<int>", admin, h.deleteProduct)
	app.Post("/api/products/:id<int>/inventory/decrement", admin, h.decrementInventory)
}

func (h *Handler) getActiveProducts(c *fiber.Ctx) error {
	page, err := pagination.FromQuery(c, sortableFields, "id")
	if err != nil {
		return err
	}
	products, err := h.service.ListActive(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getAllProducts(c *fiber.Ctx) error {
	page, err := pagination.FromQuery(c, sortableFields, "id")
	if err != nil {
		return err
	}
	products, err := h.service.ListAll(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getByCategory(c *fiber.Ctx) error {
	page, err := pagination.FromQuery(c, sortableFields, "id")
	if err != nil {
		return err
	}
	products, err := h.service.ListByCategory(c.UserContext(), c.Params("category"), page)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) search(c *fiber.Ctx) error {
	page, err := pagination.FromQuery(c, sortableFields, "id")
	if err != nil {
		return err
	}
	products, err := h.service.Search(c.UserContext(), c.Query("keyword"), page)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getInStock(c *fiber.Ctx) error {
	products, err := h.service.ListInStock(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	req := new(CreateRequest)
	if err := c.BodyParser(req); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), *req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	req := new(UpdateRequest)
	if err := c.BodyParser(req); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	updated, err := h.service.Update(c.UserContext(), id, *req)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) activateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Activate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) deactivateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Deactivate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) decrementInventory(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	req := new(InventoryRequest)
	if err := c.BodyParser(req); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	ok, err := h.service.UpdateInventory(c.UserContext(), id, req.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "insufficient inventory",
		})
	}
	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "inventoryCount": p.InventoryCount})
}

// resetProducts clears the product table and inserts the provided list (or a default sample list).
func (h *Handler) resetProducts(c *fiber.Ctx) error {
	if !h.allowReset {
		return apperror.Forbidden("reset not allowed")
	}

	var products []Product
	// If body parsing fails, fall back to the sample catalog.
	// An explicit empty array clears the table without re-seeding.
	if err := c.BodyParser(&products); err != nil {
		products = sampleProducts()
	}

	if err := h.service.ResetProducts(c.UserContext(), products); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"inserted": len(products)})
}

func sampleProducts() []Product {
	return []Product{
		{Name: "Resistance Band Set", Description: "Five latex bands from light to extra heavy", Price: decimal.RequireFromString("24.99"), InventoryCount: 120, Category: "Equipment", IsActive: true},
		{Name: "Non-Slip Yoga Mat", Description: "6mm cushioned mat with carry strap", Price: decimal.RequireFromString("39.00"), DiscountPrice: decimalPtr("29.00"), InventoryCount: 60, Category: "Yoga", IsActive: true},
		{Name: "Whey Protein Vanilla 1kg", Description: "24g protein per serving", Price: decimal.RequireFromString("45.50"), InventoryCount: 40, Category: "Nutrition", IsActive: true},
		{Name: "Seamless Training Leggings", Description: "High-waist squat-proof leggings", Price: decimal.RequireFromString("54.00"), InventoryCount: 75, Category: "Apparel", IsActive: true},
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func productID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("invalid product id")
	}
	return uint(id), nil
}
