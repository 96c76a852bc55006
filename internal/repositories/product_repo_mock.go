package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"capristore/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It applies the backend's stock rules so the gateway can run without one.
type MockProductRepository struct {
	products map[int64]models.Product
	nextID   int64
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[int64]models.Product),
	}
}

func (r *MockProductRepository) filter(keep func(p *models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Active && keep(&p) {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList
}

// GetAll returns all active products ordered by ID.
func (r *MockProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	return r.filter(func(*models.Product) bool { return true }), nil
}

// GetByID returns an active product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok || !product.Active {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetByCategory returns the active products of a category.
func (r *MockProductRepository) GetByCategory(_ context.Context, category models.ProductCategory) ([]models.Product, error) {
	return r.filter(func(p *models.Product) bool { return p.Category == category }), nil
}

// GetByStatus returns the active products in a status.
func (r *MockProductRepository) GetByStatus(_ context.Context, status models.ProductStatus) ([]models.Product, error) {
	return r.filter(func(p *models.Product) bool { return p.Status == status }), nil
}

// Search returns active products whose name contains name, ignoring case.
func (r *MockProductRepository) Search(_ context.Context, name string) ([]models.Product, error) {
	needle := strings.ToLower(name)
	return r.filter(func(p *models.Product) bool { return strings.Contains(strings.ToLower(p.Name), needle) }), nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, input *models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now()
	product := models.Product{
		ID:        r.nextID,
		Active:    true,
		CreatedAt: now,
	}
	applyInput(&product, input)
	product.UpdatedAt = now
	r.products[product.ID] = product
	return &product, nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(_ context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || !product.Active {
		return nil, fmt.Errorf("product with ID %d not found for update: %w", id, ErrNotFound)
	}
	applyInput(&product, input)
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// Delete deactivates a product; it stays referenced by past orders.
func (r *MockProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || !product.Active {
		return fmt.Errorf("product with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	product.Active = false
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

// AddStock increases stock and makes a sold out product available again.
func (r *MockProductRepository) AddStock(_ context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	return r.mutate(id, func(p *models.Product) error {
		p.Stock += quantity
		if p.Stock > 0 && p.Status == models.StatusOutOfStock {
			p.Status = models.StatusAvailable
		}
		return nil
	})
}

// ReduceStock decreases stock and marks the product sold out at zero.
func (r *MockProductRepository) ReduceStock(_ context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	return r.mutate(id, func(p *models.Product) error {
		if p.Stock < quantity || p.Status != models.StatusAvailable {
			return fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d): %w", p.Name, quantity, p.Stock, ErrConflict)
		}
		p.Stock -= quantity
		if p.Stock == 0 {
			p.Status = models.StatusOutOfStock
		}
		return nil
	})
}

// MarkOutOfStock sets stock to zero and flags the product sold out.
func (r *MockProductRepository) MarkOutOfStock(_ context.Context, id int64) (*models.Product, error) {
	return r.mutate(id, func(p *models.Product) error {
		p.Stock = 0
		p.Status = models.StatusOutOfStock
		return nil
	})
}

// LowStock returns active products with stock at or below threshold.
func (r *MockProductRepository) LowStock(_ context.Context, threshold int) ([]models.Product, error) {
	return r.filter(func(p *models.Product) bool { return p.Stock <= threshold }), nil
}

// Stats counts the catalog. Low stock uses a threshold of 10 like the backend.
func (r *MockProductRepository) Stats(ctx context.Context) (*models.ProductStats, error) {
	stats := &models.ProductStats{}
	for _, p := range r.filter(func(*models.Product) bool { return true }) {
		stats.TotalProducts++
		switch p.Status {
		case models.StatusAvailable:
			stats.AvailableProducts++
		case models.StatusOutOfStock:
			stats.OutOfStockProducts++
		}
	}
	low, _ := r.LowStock(ctx, 10)
	stats.LowStockProducts = int64(len(low))
	return stats, nil
}

func (r *MockProductRepository) mutate(id int64, fn func(p *models.Product) error) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || !product.Active {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	if err := fn(&product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

func applyInput(p *models.Product, input *models.ProductInput) {
	p.Name = input.Name
	p.Description = input.Description
	p.Price = input.Price
	p.Stock = input.Stock
	p.Category = input.Category
	p.ImageURL = input.ImageURL
	p.Unit = input.Unit

	switch {
	case input.Status == models.StatusDiscontinued:
		p.Status = models.StatusDiscontinued
	case input.Stock == 0:
		p.Status = models.StatusOutOfStock
	default:
		p.Status = models.StatusAvailable
	}
}
