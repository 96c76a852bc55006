package repositories

import (
	"context"

	"capristore/internal/models"
)

// ReceiptRepository defines the interface for the gateway's checkout receipts.
// userKey scopes every lookup to the account that checked out.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByOrderNumber(ctx context.Context, userKey, orderNumber string) (*models.Receipt, error)
	ListByUser(ctx context.Context, userKey string) ([]models.Receipt, error)
}
