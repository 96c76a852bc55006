package handlers

import (
	"fmt"

	"capristore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterPublicRoutes registers the selection lists used by order forms.
func (h *OrderHandler) RegisterPublicRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/statuses", h.HandleStatuses)
	orderRoutes.Get("/payment-methods", h.HandlePaymentMethods)
}

// RegisterRoutes registers the caller's order routes. The router must be authenticated.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/mine", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers order management on an admin-only group.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	orderRoutes := admin.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/stats", h.HandleStats)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// CancelRequest optionally explains a cancellation.
type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// StatusRequest moves an order to a new status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleGetMyOrders retrieves the caller's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.MyOrders(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid order ID", err)
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, fmt.Sprintf("Could not retrieve order %d", id), err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels one of the caller's orders. The body is optional.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid order ID", err)
	}
	var req CancelRequest
	if len(c.Body()) > 0 {
		if ok, err := bindAndValidate(c, h.validate, &req); !ok {
			return err
		}
	}
	order, err := h.service.CancelOrder(c.UserContext(), id, req.Reason)
	if err != nil {
		return respondError(c, h.logger, "Could not cancel order", err)
	}
	return c.JSON(order)
}

// HandleGetOrders lists every order, or those in the status query parameter.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if status := c.Query("status"); status != "" {
		orders, err := h.service.OrdersByStatus(ctx, status)
		if err != nil {
			return respondError(c, h.logger, "Could not retrieve orders", err)
		}
		return c.JSON(orders)
	}
	orders, err := h.service.AllOrders(ctx)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid order ID", err)
	}
	var req StatusRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	order, err := h.service.UpdateOrderStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondError(c, h.logger, "Order update failed", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %d status updated successfully to %s", id, order.Status),
		"order":   order,
	})
}

func (h *OrderHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve order stats", err)
	}
	return c.JSON(stats)
}

func (h *OrderHandler) HandleStatuses(c *fiber.Ctx) error {
	return c.JSON(h.service.Statuses())
}

func (h *OrderHandler) HandlePaymentMethods(c *fiber.Ctx) error {
	return c.JSON(h.service.PaymentMethods())
}
