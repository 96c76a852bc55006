package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDIENTE"
	OrderConfirmed OrderStatus = "CONFIRMADO"
	OrderPreparing OrderStatus = "EN_PREPARACION"
	OrderShipped   OrderStatus = "ENVIADO"
	OrderDelivered OrderStatus = "ENTREGADO"
	OrderCancelled OrderStatus = "CANCELADO"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderPreparing, OrderShipped, OrderDelivered, OrderCancelled}

var orderStatusNames = map[OrderStatus]string{
	OrderPending:   "Pendiente",
	OrderConfirmed: "Confirmado",
	OrderPreparing: "En Preparación",
	OrderShipped:   "Enviado",
	OrderDelivered: "Entregado",
	OrderCancelled: "Cancelado",
}

// DisplayName returns the human readable status.
func (s OrderStatus) DisplayName() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return string(s)
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// PaymentMethod is how the customer pays on delivery.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentCard     PaymentMethod = "CARD"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentTransfer, PaymentCard}

var paymentMethodNames = map[PaymentMethod]string{
	PaymentCash:     "Efectivo",
	PaymentTransfer: "Transferencia",
	PaymentCard:     "Tarjeta",
}

// DisplayName returns the human readable payment method.
func (m PaymentMethod) DisplayName() string {
	if name, ok := paymentMethodNames[m]; ok {
		return name
	}
	return string(m)
}

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodNames[m]
	return ok
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"` // Price at the time of order
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Unit        string          `json:"unit"`
}

// Order represents a customer order as returned by the backend.
type Order struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	UserID             int64           `json:"userId"`
	UserName           string          `json:"userName"`
	Items              []OrderItem     `json:"items"`
	Status             OrderStatus     `json:"status"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	DeliveryName       string          `json:"deliveryName"`
	DeliveryPhone      string          `json:"deliveryPhone"`
	DeliveryAddress    string          `json:"deliveryAddress"`
	DeliveryCity       string          `json:"deliveryCity"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
}

// OrderItemRequest is one line of an order submission.
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// OrderRequest is the normalized payload handed to the order backend at checkout.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" validate:"required"`
	DeliveryName    string             `json:"deliveryName" validate:"required"`
	DeliveryPhone   string             `json:"deliveryPhone" validate:"required"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required"`
	DeliveryCity    string             `json:"deliveryCity" validate:"required"`
	Notes           string             `json:"notes"`
}

// OrderStats counts orders per status.
type OrderStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	ConfirmedOrders int64 `json:"confirmedOrders"`
	DeliveredOrders int64 `json:"deliveredOrders"`
	CancelledOrders int64 `json:"cancelledOrders"`
}

// Option is a code/label pair used by selection lists.
type Option struct {
	Value       string `json:"value"`
	DisplayName string `json:"displayName"`
}
