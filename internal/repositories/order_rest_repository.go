package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"capristore/internal/backend"
	"capristore/internal/models"
)

// RESTOrderRepository submits and reads orders through the shop backend.
type RESTOrderRepository struct {
	client *backend.Client
}

// NewRESTOrderRepository creates a new instance of RESTOrderRepository.
func NewRESTOrderRepository(client *backend.Client) *RESTOrderRepository {
	return &RESTOrderRepository{client: client}
}

// Create submits an order. It is sent exactly once; retries are up to the user.
func (r *RESTOrderRepository) Create(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	var order models.Order
	if err := r.client.Do(ctx, http.MethodPost, "/api/orders", nil, req, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", mapError(err))
	}
	return &order, nil
}

// GetMine returns the caller's orders, newest first.
func (r *RESTOrderRepository) GetMine(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, "/api/orders/my-orders")
}

// GetByID returns one order visible to the caller.
func (r *RESTOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.client.Do(ctx, http.MethodGet, orderPath(id), nil, nil, &order); err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, mapError(err))
	}
	return &order, nil
}

// Cancel cancels a pending or confirmed order.
func (r *RESTOrderRepository) Cancel(ctx context.Context, id int64, reason string) (*models.Order, error) {
	var query url.Values
	if reason != "" {
		query = url.Values{"reason": {reason}}
	}
	var order models.Order
	if err := r.client.Do(ctx, http.MethodPatch, orderPath(id)+"/cancel", query, nil, &order); err != nil {
		return nil, fmt.Errorf("failed to cancel order %d: %w", id, mapError(err))
	}
	return &order, nil
}

// GetAll returns every order (admin).
func (r *RESTOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, "/api/orders/all")
}

// GetByStatus returns the orders in one status (admin).
func (r *RESTOrderRepository) GetByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return r.list(ctx, "/api/orders/status/"+url.PathEscape(string(status)))
}

// UpdateStatus moves an order to a new status (admin).
func (r *RESTOrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	query := url.Values{"status": {string(status)}}
	if err := r.client.Do(ctx, http.MethodPatch, orderPath(id)+"/status", query, nil, &order); err != nil {
		return nil, fmt.Errorf("failed to update status of order %d: %w", id, mapError(err))
	}
	return &order, nil
}

// Stats returns order counters per status (admin).
func (r *RESTOrderRepository) Stats(ctx context.Context) (*models.OrderStats, error) {
	var stats models.OrderStats
	if err := r.client.Do(ctx, http.MethodGet, "/api/orders/stats", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", mapError(err))
	}
	return &stats, nil
}

func (r *RESTOrderRepository) list(ctx context.Context, path string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.client.Do(ctx, http.MethodGet, path, nil, nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", mapError(err))
	}
	return orders, nil
}

func orderPath(id int64) string {
	return "/api/orders/" + strconv.FormatInt(id, 10)
}
