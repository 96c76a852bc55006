package repositories

import (
	"context"

	"capristore/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByCategory(ctx context.Context, category models.ProductCategory) ([]models.Product, error)
	GetByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error)
	Search(ctx context.Context, name string) ([]models.Product, error)
	Create(ctx context.Context, input *models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	AddStock(ctx context.Context, id int64, quantity int) (*models.Product, error)
	ReduceStock(ctx context.Context, id int64, quantity int) (*models.Product, error)
	MarkOutOfStock(ctx context.Context, id int64) (*models.Product, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
	Stats(ctx context.Context) (*models.ProductStats, error)
}
