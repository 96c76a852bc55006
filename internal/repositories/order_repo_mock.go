package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"capristore/internal/backend"
	"capristore/internal/models"

	"github.com/shopspring/decimal"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Stock is reserved and released through the product repository it wraps.
type MockOrderRepository struct {
	orders   map[int64]models.Order
	owners   map[int64]string
	products ProductRepository
	nextID   int64
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(products ProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[int64]models.Order),
		owners:   make(map[int64]string),
		products: products,
	}
}

// Create validates stock, reserves it and stores a pending order.
func (r *MockOrderRepository) Create(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	caller, ok := backend.CallerFrom(ctx)
	if !ok || caller.Subject == "" {
		return nil, fmt.Errorf("user not found: %w", ErrUnauthorized)
	}

	// Check everything first so a failing line does not leave stock half reserved.
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := r.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Purchasable() || product.Stock < line.Quantity {
			return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d): %w",
				product.Name, line.Quantity, product.Stock, ErrConflict)
		}
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Unit:        product.Unit,
		})
	}
	for _, item := range items {
		if _, err := r.products.ReduceStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	total := decimal.Zero
	for i := range items {
		items[i].ID = r.nextID*100 + int64(i)
		total = total.Add(items[i].Subtotal)
	}
	now := time.Now()
	order := models.Order{
		ID:              r.nextID,
		OrderNumber:     fmt.Sprintf("ORD-%06d", r.nextID),
		UserID:          caller.UserID,
		UserName:        caller.FullName,
		Items:           items,
		Status:          models.OrderPending,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     total,
		DeliveryName:    req.DeliveryName,
		DeliveryPhone:   req.DeliveryPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.orders[order.ID] = order
	r.owners[order.ID] = caller.Subject
	return &order, nil
}

// GetMine returns the caller's orders, newest first.
func (r *MockOrderRepository) GetMine(ctx context.Context) ([]models.Order, error) {
	caller, _ := backend.CallerFrom(ctx)
	return r.filter(func(id int64, _ *models.Order) bool { return r.owners[id] == caller.Subject }), nil
}

// GetByID returns an order owned by the caller, or any order for admins.
func (r *MockOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, err := r.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel cancels a pending or confirmed order and gives the stock back.
func (r *MockOrderRepository) Cancel(ctx context.Context, id int64, reason string) (*models.Order, error) {
	r.mu.Lock()
	order, err := r.visible(ctx, id)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if !order.Status.Cancellable() {
		r.mu.Unlock()
		return nil, fmt.Errorf("only pending or confirmed orders can be cancelled: %w", ErrConflict)
	}
	now := time.Now()
	order.Status = models.OrderCancelled
	order.CancelledAt = &now
	order.CancellationReason = reason
	order.UpdatedAt = now
	r.orders[id] = order
	r.mu.Unlock()

	for _, item := range order.Items {
		if _, err := r.products.AddStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}
	}
	return &order, nil
}

// GetAll returns every order, newest first.
func (r *MockOrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	return r.filter(func(int64, *models.Order) bool { return true }), nil
}

// GetByStatus returns the orders in one status, newest first.
func (r *MockOrderRepository) GetByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	return r.filter(func(_ int64, o *models.Order) bool { return o.Status == status }), nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %d not found for status update: %w", id, ErrNotFound)
	}
	now := time.Now()
	order.Status = status
	order.UpdatedAt = now
	if status == models.OrderDelivered {
		order.DeliveredAt = &now
	}
	r.orders[id] = order
	return &order, nil
}

// Stats counts orders per status.
func (r *MockOrderRepository) Stats(_ context.Context) (*models.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.OrderStats{TotalOrders: int64(len(r.orders))}
	for _, o := range r.orders {
		switch o.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderConfirmed:
			stats.ConfirmedOrders++
		case models.OrderDelivered:
			stats.DeliveredOrders++
		case models.OrderCancelled:
			stats.CancelledOrders++
		}
	}
	return stats, nil
}

// visible must be called with r.mu held.
func (r *MockOrderRepository) visible(ctx context.Context, id int64) (models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
	}
	caller, _ := backend.CallerFrom(ctx)
	if r.owners[id] != caller.Subject && !caller.IsAdmin() {
		return models.Order{}, fmt.Errorf("order %d belongs to another user: %w", id, ErrForbidden)
	}
	return order, nil
}

func (r *MockOrderRepository) filter(keep func(id int64, o *models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for id, order := range r.orders {
		if keep(id, &order) {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool { return orderList[i].ID > orderList[j].ID })
	return orderList
}
