package services

import (
	"context"
	"fmt"

	"capristore/internal/models"
	"capristore/internal/repositories"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// MyOrders retrieves the caller's orders.
func (s *OrderService) MyOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetMine(ctx)
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// CancelOrder cancels one of the caller's orders; reason may be empty.
func (s *OrderService) CancelOrder(ctx context.Context, id int64, reason string) (*models.Order, error) {
	order, err := s.orderRepo.Cancel(ctx, id, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order %d: %w", id, err)
	}
	return order, nil
}

// AllOrders retrieves every order.
func (s *OrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// OrdersByStatus retrieves the orders in one status.
func (s *OrderService) OrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	st, err := parseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByStatus(ctx, st)
}

// UpdateOrderStatus moves an order to a new status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	st, err := parseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status for order %d: %w", id, err)
	}
	return order, nil
}

// Stats counts orders per status.
func (s *OrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	return s.orderRepo.Stats(ctx)
}

// Statuses lists the order statuses with their display names.
func (s *OrderService) Statuses() []models.Option {
	options := make([]models.Option, 0, len(models.OrderStatuses))
	for _, st := range models.OrderStatuses {
		options = append(options, models.Option{Value: string(st), DisplayName: st.DisplayName()})
	}
	return options
}

// PaymentMethods lists the accepted payment methods with their display names.
func (s *OrderService) PaymentMethods() []models.Option {
	options := make([]models.Option, 0, len(models.PaymentMethods))
	for _, m := range models.PaymentMethods {
		options = append(options, models.Option{Value: string(m), DisplayName: m.DisplayName()})
	}
	return options
}

func parseOrderStatus(status string) (models.OrderStatus, error) {
	st := models.OrderStatus(status)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return st, nil
}
