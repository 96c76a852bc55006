package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"capristore/internal/cart"
	"capristore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const cartEventsHeartbeat = 15 * time.Second

// CartHandler handles HTTP requests for the caller's session cart.
type CartHandler struct {
	service   *services.CartService
	validate  *validator.Validate
	logger    *zap.Logger
	shutdown  context.Context
	heartbeat time.Duration
}

// NewCartHandler creates a new CartHandler. Event streams end once shutdown is done.
func NewCartHandler(shutdown context.Context, service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:   service,
		validate:  validator.New(),
		logger:    logger,
		shutdown:  shutdown,
		heartbeat: cartEventsHeartbeat,
	}
}

// RegisterRoutes registers the cart routes. The router must be authenticated.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClear)
	cartRoutes.Get("/events", h.HandleEvents)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Post("/items/:productId/increment", h.HandleIncrement)
	cartRoutes.Post("/items/:productId/decrement", h.HandleDecrement)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// AddItemRequest adds quantity units of a product.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// UpdateItemRequest sets the quantity of a line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	return c.JSON(h.service.Summary(session))
}

// HandleAddItem adds a catalog product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	var req AddItemRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	summary, err := h.service.Add(c.UserContext(), session, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, "Could not add product to cart", err)
	}
	return c.JSON(summary)
}

// HandleUpdateItem sets the quantity of a product in the cart.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	productID, err := idParam(c, "productId")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	var req UpdateItemRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	summary, err := h.service.Update(session, productID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, "Could not update cart", err)
	}
	return c.JSON(summary)
}

func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	return h.lineOperation(c, h.service.Increment)
}

func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	return h.lineOperation(c, h.service.Decrement)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	return h.lineOperation(c, h.service.Remove)
}

func (h *CartHandler) lineOperation(c *fiber.Ctx, op func(session string, productID int64) (cart.Summary, error)) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	productID, err := idParam(c, "productId")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	summary, err := op(session, productID)
	if err != nil {
		return respondError(c, h.logger, "Could not update cart", err)
	}
	return c.JSON(summary)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	return c.JSON(h.service.Clear(session))
}

// HandleEvents streams the cart summary as server-sent events: the current
// state first, then one "cart" event per change. The stream ends when the
// client goes away, the session ends or the server shuts down.
func (h *CartHandler) HandleEvents(c *fiber.Ctx) error {
	session, ok := sessionKey(c)
	if !ok {
		return unauthenticated(c)
	}
	store := h.service.Store(session)
	updates, stop := store.Watch()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := h.logger.With(zap.String("session", session))
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stop()

		if err := writeCartEvent(w, store.Snapshot()); err != nil {
			return
		}
		heartbeat := time.NewTicker(h.heartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-h.shutdown.Done():
				logger.Debug("cart event stream stopped for shutdown")
				return
			case summary := <-updates:
				if err := writeCartEvent(w, summary); err != nil {
					logger.Debug("cart event stream closed", zap.Error(err))
					return
				}
			case <-heartbeat.C:
				// An open stream counts as activity; a session that ended
				// meanwhile has a new cart the client must reconnect to.
				if !h.service.Touch(session) {
					logger.Debug("cart session ended, closing event stream")
					return
				}
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					logger.Debug("cart event stream closed", zap.Error(err))
					return
				}
			}
		}
	}))
	return nil
}

func writeCartEvent(w *bufio.Writer, summary cart.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal cart summary: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
