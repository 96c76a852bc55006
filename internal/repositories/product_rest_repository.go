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

// RESTProductRepository reads and writes products through the shop backend.
type RESTProductRepository struct {
	client *backend.Client
}

// NewRESTProductRepository creates a new instance of RESTProductRepository.
func NewRESTProductRepository(client *backend.Client) *RESTProductRepository {
	return &RESTProductRepository{client: client}
}

func (r *RESTProductRepository) list(ctx context.Context, path string, query url.Values) ([]models.Product, error) {
	var products []models.Product
	if err := r.client.Do(ctx, http.MethodGet, path, query, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", mapError(err))
	}
	return products, nil
}

func (r *RESTProductRepository) one(ctx context.Context, method, path string, query url.Values, body any) (*models.Product, error) {
	var product models.Product
	if err := r.client.Do(ctx, method, path, query, body, &product); err != nil {
		return nil, mapError(err)
	}
	return &product, nil
}

// GetAll retrieves all active products.
func (r *RESTProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, "/api/products", nil)
}

// GetByID retrieves a single product by its ID.
func (r *RESTProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := r.one(ctx, http.MethodGet, productPath(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return product, nil
}

// GetByCategory retrieves the products of one category.
func (r *RESTProductRepository) GetByCategory(ctx context.Context, category models.ProductCategory) ([]models.Product, error) {
	return r.list(ctx, "/api/products/category/"+url.PathEscape(string(category)), nil)
}

// GetByStatus retrieves the products in one status.
func (r *RESTProductRepository) GetByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	return r.list(ctx, "/api/products/status/"+url.PathEscape(string(status)), nil)
}

// Search retrieves products whose name contains name.
func (r *RESTProductRepository) Search(ctx context.Context, name string) ([]models.Product, error) {
	return r.list(ctx, "/api/products/search", url.Values{"name": {name}})
}

// Create creates a new product.
func (r *RESTProductRepository) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	product, err := r.one(ctx, http.MethodPost, "/api/products", nil, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces the editable fields of a product.
func (r *RESTProductRepository) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	product, err := r.one(ctx, http.MethodPut, productPath(id), nil, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return product, nil
}

// Delete deactivates a product.
func (r *RESTProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Do(ctx, http.MethodDelete, productPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, mapError(err))
	}
	return nil
}

// AddStock increases the stock of a product.
func (r *RESTProductRepository) AddStock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	product, err := r.one(ctx, http.MethodPatch, productPath(id)+"/stock/add", quantityQuery(quantity), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to add stock to product %d: %w", id, err)
	}
	return product, nil
}

// ReduceStock decreases the stock of a product.
func (r *RESTProductRepository) ReduceStock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	product, err := r.one(ctx, http.MethodPatch, productPath(id)+"/stock/reduce", quantityQuery(quantity), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce stock of product %d: %w", id, err)
	}
	return product, nil
}

// MarkOutOfStock flags a product as sold out.
func (r *RESTProductRepository) MarkOutOfStock(ctx context.Context, id int64) (*models.Product, error) {
	product, err := r.one(ctx, http.MethodPatch, productPath(id)+"/out-of-stock", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to mark product %d out of stock: %w", id, err)
	}
	return product, nil
}

// LowStock lists products whose stock is at or below threshold.
func (r *RESTProductRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return r.list(ctx, "/api/products/low-stock", url.Values{"threshold": {strconv.Itoa(threshold)}})
}

// Stats returns the catalog counters.
func (r *RESTProductRepository) Stats(ctx context.Context) (*models.ProductStats, error) {
	var stats models.ProductStats
	if err := r.client.Do(ctx, http.MethodGet, "/api/products/stats", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to get product stats: %w", mapError(err))
	}
	return &stats, nil
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func quantityQuery(quantity int) url.Values {
	return url.Values{"quantity": {strconv.Itoa(quantity)}}
}
