package handlers

import (
	"capristore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler turns the caller's cart into an order.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout routes. The router must be authenticated.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Post("/", h.HandleCheckout)
	checkoutRoutes.Get("/receipts", h.HandleListReceipts)
	checkoutRoutes.Get("/receipts/:orderNumber", h.HandleGetReceipt)
}

// HandleCheckout submits the cart with the delivery form.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	var form services.CheckoutForm
	if ok, err := bindAndValidate(c, h.validate, &form); !ok {
		return err
	}

	confirmation, err := h.service.Checkout(c.UserContext(), session, form)
	if err != nil {
		return respondError(c, h.logger, "Checkout failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   confirmation.Order,
		"receipt": confirmation.Receipt,
	})
}

func (h *CheckoutHandler) HandleListReceipts(c *fiber.Ctx) error {
	receipts, err := h.service.Receipts(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve receipts", err)
	}
	return c.JSON(receipts)
}

func (h *CheckoutHandler) HandleGetReceipt(c *fiber.Ctx) error {
	receipt, err := h.service.Receipt(c.UserContext(), c.Params("orderNumber"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve receipt", err)
	}
	return c.JSON(receipt)
}
