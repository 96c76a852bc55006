package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the gateway's record of a completed checkout. It keeps the cart
// totals that were submitted so the confirmation survives clearing the cart.
type Receipt struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID       int64           `json:"orderId" gorm:"index"`
	OrderNumber   string          `json:"orderNumber" gorm:"uniqueIndex;type:varchar(32)"`
	UserKey       string          `json:"-" gorm:"index;type:varchar(255)"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20)"`
	TotalItems    int             `json:"totalItems"`
	TotalPrice    decimal.Decimal `json:"totalPrice" gorm:"type:numeric(12,2)"`
	Items         []ReceiptLine   `json:"items" gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ReceiptLine is one cart line captured on a receipt.
type ReceiptLine struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	ReceiptID string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Quantity  int             `json:"quantity"`
}
