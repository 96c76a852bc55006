package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"capristore/internal/models"

	"github.com/google/uuid"
)

// MockReceiptRepository is an in-memory implementation of ReceiptRepository.
type MockReceiptRepository struct {
	receipts map[string]models.Receipt
	mu       sync.RWMutex
}

// NewMockReceiptRepository creates a new instance of MockReceiptRepository.
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{
		receipts: make(map[string]models.Receipt),
	}
}

// Create stores a receipt; order numbers are unique.
func (r *MockReceiptRepository) Create(_ context.Context, receipt *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.receipts[receipt.OrderNumber]; exists {
		return fmt.Errorf("receipt for order %s already exists: %w", receipt.OrderNumber, ErrConflict)
	}
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now()
	}
	r.receipts[receipt.OrderNumber] = *receipt
	return nil
}

// GetByOrderNumber retrieves one of the user's receipts by order number.
func (r *MockReceiptRepository) GetByOrderNumber(_ context.Context, userKey, orderNumber string) (*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	receipt, ok := r.receipts[orderNumber]
	if !ok || receipt.UserKey != userKey {
		return nil, fmt.Errorf("receipt for order %s: %w", orderNumber, ErrNotFound)
	}
	return &receipt, nil
}

// ListByUser retrieves the user's receipts, newest first.
func (r *MockReceiptRepository) ListByUser(_ context.Context, userKey string) ([]models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	receipts := make([]models.Receipt, 0)
	for _, receipt := range r.receipts {
		if receipt.UserKey == userKey {
			receipts = append(receipts, receipt)
		}
	}
	sort.Slice(receipts, func(i, j int) bool { return receipts[i].CreatedAt.After(receipts[j].CreatedAt) })
	return receipts, nil
}
