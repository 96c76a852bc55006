package repositories_test

import (
	"context"
	"errors"
	"testing"

	"capristore/internal/backend"
	"capristore/internal/models"
	"capristore/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerCtx(email string) context.Context {
	return backend.WithCaller(context.Background(), backend.Caller{Subject: email, UserID: 7, FullName: "Ana Pérez", Role: "CLIENTE"})
}

func orderRequest(productID int64, quantity int) *models.OrderRequest {
	return &models.OrderRequest{
		Items:           []models.OrderItemRequest{{ProductID: productID, Quantity: quantity}},
		PaymentMethod:   models.PaymentCash,
		DeliveryName:    "Ana Pérez",
		DeliveryPhone:   "3001234567",
		DeliveryAddress: "Calle 1",
		DeliveryCity:    "Bogotá",
	}
}

func TestMockOrderRepository_CreateReservesStock(t *testing.T) {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)
	ctx := customerCtx("ana@example.com")
	p, _ := products.Create(ctx, newProductInput("Leche", 5))

	order, err := orders.Create(ctx, orderRequest(p.ID, 3))
	require.NoError(t, err)

	assert.Equal(t, "ORD-000001", order.OrderNumber)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, decimal.RequireFromString("7501.50").Equal(order.TotalAmount))
	after, _ := products.GetByID(ctx, p.ID)
	assert.Equal(t, 2, after.Stock)
}

func TestMockOrderRepository_CreateRejectsInsufficientStock(t *testing.T) {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)
	ctx := customerCtx("ana@example.com")
	p, _ := products.Create(ctx, newProductInput("Leche", 2))

	_, err := orders.Create(ctx, orderRequest(p.ID, 3))
	assert.True(t, errors.Is(err, repositories.ErrConflict))

	after, _ := products.GetByID(ctx, p.ID)
	assert.Equal(t, 2, after.Stock)
}

func TestMockOrderRepository_CreateRequiresCaller(t *testing.T) {
	orders := repositories.NewMockOrderRepository(repositories.NewMockProductRepository())

	_, err := orders.Create(context.Background(), orderRequest(1, 1))
	assert.True(t, errors.Is(err, repositories.ErrUnauthorized))
}

func TestMockOrderRepository_CancelRestoresStock(t *testing.T) {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)
	ctx := customerCtx("ana@example.com")
	p, _ := products.Create(ctx, newProductInput("Leche", 3))
	order, _ := orders.Create(ctx, orderRequest(p.ID, 3))

	cancelled, err := orders.Cancel(ctx, order.ID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)
	after, _ := products.GetByID(ctx, p.ID)
	assert.Equal(t, 3, after.Stock)
	assert.Equal(t, models.StatusAvailable, after.Status)

	_, err = orders.Cancel(ctx, order.ID, "")
	assert.True(t, errors.Is(err, repositories.ErrConflict))
}

func TestMockOrderRepository_OrdersAreScopedToOwner(t *testing.T) {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)
	ana := customerCtx("ana@example.com")
	luis := customerCtx("luis@example.com")
	admin := backend.WithCaller(context.Background(), backend.Caller{Subject: "admin@example.com", Role: "ADMIN"})
	p, _ := products.Create(ana, newProductInput("Leche", 10))
	order, _ := orders.Create(ana, orderRequest(p.ID, 1))

	_, err := orders.GetByID(luis, order.ID)
	assert.True(t, errors.Is(err, repositories.ErrForbidden))
	mine, _ := orders.GetMine(luis)
	assert.Empty(t, mine)

	got, err := orders.GetByID(admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
}

func TestMockOrderRepository_UpdateStatusAndStats(t *testing.T) {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)
	ctx := customerCtx("ana@example.com")
	p, _ := products.Create(ctx, newProductInput("Leche", 10))
	first, _ := orders.Create(ctx, orderRequest(p.ID, 1))
	_, _ = orders.Create(ctx, orderRequest(p.ID, 1))

	delivered, err := orders.UpdateStatus(ctx, first.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	pending, _ := orders.GetByStatus(ctx, models.OrderPending)
	assert.Len(t, pending, 1)

	stats, err := orders.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.DeliveredOrders)

	_, err = orders.UpdateStatus(ctx, 99, models.OrderShipped)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}
