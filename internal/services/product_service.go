package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"capristore/internal/models"
	"capristore/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo              repositories.ProductRepository
	lowStockThreshold int
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, lowStockThreshold int) *ProductService {
	return &ProductService{
		repo:              repo,
		lowStockThreshold: lowStockThreshold,
	}
}

// ListCatalog returns the active products that pass the filter.
func (s *ProductService) ListCatalog(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var (
		products []models.Product
		err      error
	)
	if filter.Category != "" {
		products, err = s.repo.GetByCategory(ctx, filter.Category)
	} else {
		products, err = s.repo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	active := products[:0:0]
	for _, p := range products {
		if p.Active {
			active = append(active, p)
		}
	}
	return filter.Apply(active), nil
}

// GetProduct retrieves a single active product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("product with ID %d: %w", id, repositories.ErrNotFound)
	}
	return product, nil
}

// Categories lists the product categories with their display names.
func (s *ProductService) Categories() []models.Option {
	options := make([]models.Option, 0, len(models.Categories))
	for _, c := range models.Categories {
		options = append(options, models.Option{Value: string(c), DisplayName: c.DisplayName()})
	}
	return options
}

// Units lists the distinct units used by the catalog, lower-cased and sorted.
func (s *ProductService) Units(ctx context.Context) ([]string, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	units := make([]string, 0)
	for _, p := range products {
		unit := strings.ToLower(strings.TrimSpace(p.Unit))
		if _, ok := seen[unit]; ok || unit == "" {
			continue
		}
		seen[unit] = struct{}{}
		units = append(units, unit)
	}
	sort.Strings(units)
	return units, nil
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return product, nil
}

// DeleteProduct deactivates a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddStock increases the stock of a product.
func (s *ProductService) AddStock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", repositories.ErrInvalidInput)
	}
	return s.repo.AddStock(ctx, id, quantity)
}

// ReduceStock decreases the stock of a product.
func (s *ProductService) ReduceStock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", repositories.ErrInvalidInput)
	}
	return s.repo.ReduceStock(ctx, id, quantity)
}

// MarkOutOfStock flags a product as sold out.
func (s *ProductService) MarkOutOfStock(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.MarkOutOfStock(ctx, id)
}

// LowStock lists products at or below threshold; threshold < 0 uses the configured default.
func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold < 0 {
		threshold = s.lowStockThreshold
	}
	return s.repo.LowStock(ctx, threshold)
}

// Stats returns the catalog counters.
func (s *ProductService) Stats(ctx context.Context) (*models.ProductStats, error) {
	return s.repo.Stats(ctx)
}

func validateProductInput(input *models.ProductInput) error {
	if !input.Price.IsPositive() {
		return fmt.Errorf("price must be greater than zero: %w", repositories.ErrInvalidInput)
	}
	if !input.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", input.Category, repositories.ErrInvalidInput)
	}
	if input.Status != "" && !input.Status.Valid() {
		return fmt.Errorf("unknown product status %q: %w", input.Status, repositories.ErrInvalidInput)
	}
	return nil
}
