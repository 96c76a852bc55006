package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capristore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReceiptRepository is a GORM implementation of ReceiptRepository.
type GORMReceiptRepository struct {
	db *gorm.DB
}

// NewGORMReceiptRepository creates a new instance of GORMReceiptRepository.
func NewGORMReceiptRepository(db *gorm.DB) *GORMReceiptRepository {
	return &GORMReceiptRepository{
		db: db,
	}
}

// Create stores a receipt together with its lines.
func (r *GORMReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to create receipt for order %s: %w", receipt.OrderNumber, err)
	}
	return nil
}

// GetByOrderNumber retrieves one of the user's receipts by order number.
func (r *GORMReceiptRepository) GetByOrderNumber(ctx context.Context, userKey, orderNumber string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_key = ? AND order_number = ?", userKey, orderNumber).
		First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("receipt for order %s: %w", orderNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get receipt for order %s: %w", orderNumber, err)
	}
	return &receipt, nil
}

// ListByUser retrieves the user's receipts, newest first.
func (r *GORMReceiptRepository) ListByUser(ctx context.Context, userKey string) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_key = ?", userKey).
		Order("created_at DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return receipts, nil
}
