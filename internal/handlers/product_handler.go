package handlers

import (
	"context"
	"fmt"
	"strings"

	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/categories", h.HandleCategories)
	productRoutes.Get("/units", h.HandleUnits)
	productRoutes.Get("/:id", h.HandleGetProduct)
}

// RegisterAdminRoutes registers product management on an admin-only group.
func (h *ProductHandler) RegisterAdminRoutes(admin fiber.Router) {
	productRoutes := admin.Group("/products")
	productRoutes.Get("/low-stock", h.HandleLowStock)
	productRoutes.Get("/stats", h.HandleStats)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/stock/add", h.HandleAddStock)
	productRoutes.Post("/:id/stock/reduce", h.HandleReduceStock)
	productRoutes.Patch("/:id/out-of-stock", h.HandleMarkOutOfStock)
}

// StockRequest is the body of the stock adjustment routes.
type StockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// HandleListProducts lists the active catalog, filtered by the query string.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid filter", err)
	}
	products, err := h.service.ListCatalog(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single active product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, fmt.Sprintf("Product with ID %d not available", id), err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	return c.JSON(h.service.Categories())
}

func (h *ProductHandler) HandleUnits(c *fiber.Ctx) error {
	units, err := h.service.Units(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve units", err)
	}
	return c.JSON(units)
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), &input)
	if err != nil {
		return respondError(c, h.logger, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	var input models.ProductInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, &input)
	if err != nil {
		return respondError(c, h.logger, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deactivates a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted", id),
	})
}

func (h *ProductHandler) HandleAddStock(c *fiber.Ctx) error {
	return h.adjustStock(c, h.service.AddStock)
}

func (h *ProductHandler) HandleReduceStock(c *fiber.Ctx) error {
	return h.adjustStock(c, h.service.ReduceStock)
}

func (h *ProductHandler) adjustStock(c *fiber.Ctx, apply func(ctx context.Context, id int64, quantity int) (*models.Product, error)) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	var req StockRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	product, err := apply(c.UserContext(), id, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, "Could not update stock", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleMarkOutOfStock(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	product, err := h.service.MarkOutOfStock(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "Could not update stock", err)
	}
	return c.JSON(product)
}

// HandleLowStock lists products at or below the threshold query parameter.
func (h *ProductHandler) HandleLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock(c.UserContext(), c.QueryInt("threshold", -1))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve low stock products", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve product stats", err)
	}
	return c.JSON(stats)
}

// filterFromQuery reads search, category, status, unit, minPrice and maxPrice.
func filterFromQuery(c *fiber.Ctx) (services.ProductFilter, error) {
	filter := services.ProductFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: models.ProductCategory(strings.ToUpper(c.Query("category"))),
		Status:   models.ProductStatus(strings.ToUpper(c.Query("status"))),
		Unit:     strings.TrimSpace(c.Query("unit")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return filter, fmt.Errorf("unknown category %q: %w", filter.Category, repositories.ErrInvalidInput)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, fmt.Errorf("unknown status %q: %w", filter.Status, repositories.ErrInvalidInput)
	}
	var err error
	if filter.MinPrice, err = priceQuery(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = priceQuery(c, "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

func priceQuery(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number: %w", name, repositories.ErrInvalidInput)
	}
	return &d, nil
}
