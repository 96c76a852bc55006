package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"capristore/internal/backend"
	"capristore/internal/cart"
	"capristore/internal/metrics"
	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/pkg/rabbitmq"

	"go.uber.org/zap"
)

// CheckoutForm is the delivery and payment information entered at checkout.
type CheckoutForm struct {
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	DeliveryName    string               `json:"deliveryName" validate:"omitempty,max=100"`
	DeliveryPhone   string               `json:"deliveryPhone" validate:"required,max=20"`
	DeliveryAddress string               `json:"deliveryAddress" validate:"required,max=255"`
	DeliveryCity    string               `json:"deliveryCity" validate:"required,max=100"`
	Notes           string               `json:"notes" validate:"omitempty,max=500"`
}

// Confirmation is what a successful checkout returns.
type Confirmation struct {
	Order   *models.Order   `json:"order"`
	Receipt *models.Receipt `json:"receipt"`
}

// CheckoutPublisher announces completed checkouts.
type CheckoutPublisher interface {
	PublishCheckoutCompleted(event rabbitmq.CheckoutCompleted) error
}

// CheckoutService turns a session cart into an order.
type CheckoutService struct {
	sessions  *cart.Sessions
	orders    repositories.OrderRepository
	receipts  repositories.ReceiptRepository
	publisher CheckoutPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewCheckoutService creates a new CheckoutService. publisher and m may be nil.
func NewCheckoutService(
	sessions *cart.Sessions,
	orders repositories.OrderRepository,
	receipts repositories.ReceiptRepository,
	publisher CheckoutPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions:  sessions,
		orders:    orders,
		receipts:  receipts,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// Checkout submits the session's cart as one order. The ordered quantities
// leave the cart only once the order was accepted, so a failed submission can
// be retried as is and lines changed meanwhile are kept.
func (s *CheckoutService) Checkout(ctx context.Context, session string, form CheckoutForm) (*Confirmation, error) {
	if !s.begin(session) {
		s.metrics.IncCheckout("rejected")
		return nil, fmt.Errorf("%w: %w", ErrCheckoutInProgress, repositories.ErrConflict)
	}
	defer s.end(session)

	store := s.sessions.Get(session)
	summary := store.Snapshot()
	if len(summary.Items) == 0 {
		s.metrics.IncCheckout("rejected")
		return nil, ErrEmptyCart
	}

	caller, _ := backend.CallerFrom(ctx)
	req, err := buildOrderRequest(summary, form, caller)
	if err != nil {
		s.metrics.IncCheckout("rejected")
		return nil, err
	}

	order, err := s.orders.Create(ctx, req)
	if err != nil {
		s.metrics.IncCheckout("failed")
		s.logger.Warn("checkout failed", zap.String("session", session), zap.Error(err))
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	receipt := newReceipt(order, caller.Subject, req.PaymentMethod, summary)
	if err := s.receipts.Create(ctx, receipt); err != nil {
		// The order exists at this point; losing the local receipt must not undo it.
		s.logger.Error("failed to store receipt", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
	s.publish(receipt)

	store.Deduct(summary.Items)
	s.metrics.IncCheckout("success")
	s.logger.Info("checkout completed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("total_items", summary.TotalItems),
		zap.String("total_price", summary.TotalPrice.StringFixed(2)),
	)
	return &Confirmation{Order: order, Receipt: receipt}, nil
}

// Receipts lists the caller's receipts, newest first.
func (s *CheckoutService) Receipts(ctx context.Context) ([]models.Receipt, error) {
	caller, _ := backend.CallerFrom(ctx)
	return s.receipts.ListByUser(ctx, caller.Subject)
}

// Receipt returns one of the caller's receipts.
func (s *CheckoutService) Receipt(ctx context.Context, orderNumber string) (*models.Receipt, error) {
	caller, _ := backend.CallerFrom(ctx)
	return s.receipts.GetByOrderNumber(ctx, caller.Subject, orderNumber)
}

func (s *CheckoutService) begin(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[session]; busy {
		return false
	}
	s.inFlight[session] = struct{}{}
	return true
}

func (s *CheckoutService) end(session string) {
	s.mu.Lock()
	delete(s.inFlight, session)
	s.mu.Unlock()
}

func (s *CheckoutService) publish(receipt *models.Receipt) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.CheckoutCompleted{
		OrderID:       receipt.OrderID,
		OrderNumber:   receipt.OrderNumber,
		UserKey:       receipt.UserKey,
		PaymentMethod: string(receipt.PaymentMethod),
		TotalItems:    receipt.TotalItems,
		TotalPrice:    receipt.TotalPrice.StringFixed(2),
		OccurredAt:    receipt.CreatedAt,
	}
	if err := s.publisher.PublishCheckoutCompleted(event); err != nil {
		s.logger.Warn("failed to publish checkout event", zap.String("order_number", receipt.OrderNumber), zap.Error(err))
	}
}

// buildOrderRequest normalizes the form and pairs it with the cart lines.
func buildOrderRequest(summary cart.Summary, form CheckoutForm, caller backend.Caller) (*models.OrderRequest, error) {
	req := &models.OrderRequest{
		PaymentMethod:   form.PaymentMethod,
		DeliveryName:    strings.TrimSpace(form.DeliveryName),
		DeliveryPhone:   strings.TrimSpace(form.DeliveryPhone),
		DeliveryAddress: strings.TrimSpace(form.DeliveryAddress),
		DeliveryCity:    strings.TrimSpace(form.DeliveryCity),
		Notes:           strings.TrimSpace(form.Notes),
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, form.PaymentMethod)
	}
	if req.DeliveryName == "" {
		req.DeliveryName = caller.FullName
	}

	var missing []string
	if req.DeliveryName == "" {
		missing = append(missing, "deliveryName")
	}
	if req.DeliveryPhone == "" {
		missing = append(missing, "deliveryPhone")
	}
	if req.DeliveryAddress == "" {
		missing = append(missing, "deliveryAddress")
	}
	if req.DeliveryCity == "" {
		missing = append(missing, "deliveryCity")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("please fill in all required fields (%s): %w", strings.Join(missing, ", "), repositories.ErrInvalidInput)
	}

	req.Items = make([]models.OrderItemRequest, 0, len(summary.Items))
	for _, item := range summary.Items {
		req.Items = append(req.Items, models.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return req, nil
}

func newReceipt(order *models.Order, userKey string, method models.PaymentMethod, summary cart.Summary) *models.Receipt {
	receipt := &models.Receipt{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserKey:       userKey,
		PaymentMethod: method,
		TotalItems:    summary.TotalItems,
		TotalPrice:    summary.TotalPrice,
		CreatedAt:     time.Now(),
		Items:         make([]models.ReceiptLine, 0, len(summary.Items)),
	}
	for _, item := range summary.Items {
		receipt.Items = append(receipt.Items, models.ReceiptLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Unit:      item.Unit,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return receipt
}

