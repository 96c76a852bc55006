package repositories

import (
	"context"
	"fmt"
	"sync"
)

// MockIntegrationRepository exports the products of a ProductRepository as
// the local feed and serves a configurable external feed.
type MockIntegrationRepository struct {
	products    ProductRepository
	external    []FeedRecord
	externalErr error
	mu          sync.RWMutex
}

// NewMockIntegrationRepository creates a new instance of MockIntegrationRepository.
func NewMockIntegrationRepository(products ProductRepository) *MockIntegrationRepository {
	return &MockIntegrationRepository{products: products}
}

// SetExternal replaces the external feed; a non-nil err makes the feed fail.
func (r *MockIntegrationRepository) SetExternal(records []FeedRecord, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.external = records
	r.externalErr = err
}

// LocalProducts returns the catalog in the backend's export layout.
func (r *MockIntegrationRepository) LocalProducts(ctx context.Context) ([]FeedRecord, error) {
	products, err := r.products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get local products: %w", err)
	}
	records := make([]FeedRecord, 0, len(products))
	for _, p := range products {
		records = append(records, FeedRecord{
			"id":    p.ID,
			"name":  p.Name,
			"price": p.Price.String(),
			"unit":  p.Unit,
			"stock": p.Stock,
		})
	}
	return records, nil
}

// ExternalProducts returns the configured external feed.
func (r *MockIntegrationRepository) ExternalProducts(_ context.Context) ([]FeedRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.externalErr != nil {
		return nil, r.externalErr
	}
	return r.external, nil
}
