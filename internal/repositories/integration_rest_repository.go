package repositories

import (
	"context"
	"fmt"
	"net/http"

	"capristore/internal/backend"
)

// RESTIntegrationRepository reads the local export from the shop backend and
// the external feed from its own absolute URL.
type RESTIntegrationRepository struct {
	client      *backend.Client
	externalURL string
}

// NewRESTIntegrationRepository creates a new instance of RESTIntegrationRepository.
func NewRESTIntegrationRepository(client *backend.Client, externalURL string) *RESTIntegrationRepository {
	return &RESTIntegrationRepository{client: client, externalURL: externalURL}
}

// LocalProducts returns the backend's product export.
func (r *RESTIntegrationRepository) LocalProducts(ctx context.Context) ([]FeedRecord, error) {
	var records []FeedRecord
	if err := r.client.Do(ctx, http.MethodGet, "/api/integration/products", nil, nil, &records); err != nil {
		return nil, fmt.Errorf("failed to get local products: %w", mapError(err))
	}
	return records, nil
}

// ExternalProducts returns the partner system's product feed.
func (r *RESTIntegrationRepository) ExternalProducts(ctx context.Context) ([]FeedRecord, error) {
	if r.externalURL == "" {
		return nil, fmt.Errorf("external feed URL is not configured: %w", ErrUnavailable)
	}
	var records []FeedRecord
	if err := r.client.GetAbsolute(ctx, r.externalURL, &records); err != nil {
		return nil, fmt.Errorf("failed to get external products: %w", mapError(err))
	}
	return records, nil
}
