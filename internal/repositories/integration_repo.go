package repositories

import "context"

// FeedRecord is one raw product record as an inventory feed serves it.
// Field types vary between systems, so records are normalized by the caller.
type FeedRecord = map[string]any

// IntegrationRepository fetches the two inventory feeds to reconcile.
type IntegrationRepository interface {
	LocalProducts(ctx context.Context) ([]FeedRecord, error)
	ExternalProducts(ctx context.Context) ([]FeedRecord, error)
}
