package repositories

import (
	"context"

	"capristore/internal/models"
)

// OrderRepository defines the interface for order data access.
// The caller identity travels in ctx (see backend.WithCaller).
type OrderRepository interface {
	Create(ctx context.Context, req *models.OrderRequest) (*models.Order, error)
	GetMine(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Cancel(ctx context.Context, id int64, reason string) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}
