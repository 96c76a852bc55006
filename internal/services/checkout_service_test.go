package services_test

import (
	"context"
	"errors"
	"testing"

	"capristore/internal/backend"
	"capristore/internal/cart"
	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/internal/services"
	"capristore/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCheckoutCompleted(event rabbitmq.CheckoutCompleted) error {
	return m.Called(event).Error(0)
}

type checkoutFixture struct {
	sessions  *cart.Sessions
	orders    *MockOrderRepository
	receipts  *repositories.MockReceiptRepository
	publisher *MockPublisher
	service   *services.CheckoutService
	ctx       context.Context
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		sessions:  cart.NewSessions(0, zap.NewNop()),
		orders:    new(MockOrderRepository),
		receipts:  repositories.NewMockReceiptRepository(),
		publisher: new(MockPublisher),
		ctx: backend.WithCaller(context.Background(), backend.Caller{
			Token: "tok", Subject: "ana@example.com", UserID: 7, FullName: "Ana Pérez", Role: "CLIENTE",
		}),
	}
	f.service = services.NewCheckoutService(f.sessions, f.orders, f.receipts, f.publisher, nil, zap.NewNop())

	store := f.sessions.Get("ana@example.com")
	store.AddItem(cart.Product{ID: 1, Name: "Leche", Price: price("2500.50"), Stock: 10, Unit: "litro"}, 3)
	store.AddItem(cart.Product{ID: 2, Name: "Queso", Price: price("9000"), Stock: 2, Unit: "kg"}, 1)
	return f
}

var validForm = services.CheckoutForm{
	PaymentMethod:   models.PaymentTransfer,
	DeliveryPhone:   " 3001234567 ",
	DeliveryAddress: "Calle 1 # 2-3",
	DeliveryCity:    "Bogotá",
}

func TestCheckoutService_Success(t *testing.T) {
	f := newCheckoutFixture(t)

	expectedReq := &models.OrderRequest{
		Items:           []models.OrderItemRequest{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}},
		PaymentMethod:   models.PaymentTransfer,
		DeliveryName:    "Ana Pérez",
		DeliveryPhone:   "3001234567",
		DeliveryAddress: "Calle 1 # 2-3",
		DeliveryCity:    "Bogotá",
	}
	f.orders.On("Create", f.ctx, expectedReq).Return(&models.Order{ID: 11, OrderNumber: "ORD-000011", Status: models.OrderPending}, nil).Once()
	f.publisher.On("PublishCheckoutCompleted", mock.MatchedBy(func(e rabbitmq.CheckoutCompleted) bool {
		return e.OrderNumber == "ORD-000011" && e.TotalPrice == "16501.50" && e.TotalItems == 4
	})).Return(nil).Once()

	confirmation, err := f.service.Checkout(f.ctx, "ana@example.com", validForm)
	require.NoError(t, err)

	assert.Equal(t, "ORD-000011", confirmation.Order.OrderNumber)
	assert.True(t, price("16501.50").Equal(confirmation.Receipt.TotalPrice))
	assert.Len(t, confirmation.Receipt.Items, 2)
	assert.True(t, f.sessions.Get("ana@example.com").IsEmpty())

	stored, err := f.service.Receipt(f.ctx, "ORD-000011")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.TotalItems)
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCheckoutService_KeepsLinesChangedDuringSubmission(t *testing.T) {
	f := newCheckoutFixture(t)
	store := f.sessions.Get("ana@example.com")

	f.orders.On("Create", f.ctx, mock.Anything).
		Run(func(mock.Arguments) {
			store.AddItem(cart.Product{ID: 3, Name: "Yogurt", Price: price("7200"), Stock: 5, Unit: "litro"}, 2)
			store.Increment(1)
		}).
		Return(&models.Order{ID: 12, OrderNumber: "ORD-000012", Status: models.OrderPending}, nil).Once()
	f.publisher.On("PublishCheckoutCompleted", mock.Anything).Return(nil).Once()

	confirmation, err := f.service.Checkout(f.ctx, "ana@example.com", validForm)
	require.NoError(t, err)
	assert.Equal(t, 4, confirmation.Receipt.TotalItems)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity, "the unit added after submission stays")
	assert.Equal(t, int64(3), items[1].ProductID)
	assert.Equal(t, 2, items[1].Quantity)
	f.orders.AssertExpectations(t)
}

func TestCheckoutService_FailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.On("Create", f.ctx, mock.Anything).Return(nil, errors.New("insufficient stock")).Once()

	_, err := f.service.Checkout(f.ctx, "ana@example.com", validForm)
	assert.Error(t, err)

	assert.Equal(t, 4, f.sessions.Get("ana@example.com").TotalItems())
	receipts, _ := f.service.Receipts(f.ctx)
	assert.Empty(t, receipts)
	f.publisher.AssertNotCalled(t, "PublishCheckoutCompleted", mock.Anything)
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.sessions.Get("ana@example.com").Clear()

	_, err := f.service.Checkout(f.ctx, "ana@example.com", validForm)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutService_ValidatesForm(t *testing.T) {
	f := newCheckoutFixture(t)

	missingCity := validForm
	missingCity.DeliveryCity = "  "
	_, err := f.service.Checkout(f.ctx, "ana@example.com", missingCity)
	assert.ErrorIs(t, err, repositories.ErrInvalidInput)
	assert.Contains(t, err.Error(), "deliveryCity")

	badPayment := validForm
	badPayment.PaymentMethod = "BITCOIN"
	_, err = f.service.Checkout(f.ctx, "ana@example.com", badPayment)
	assert.ErrorIs(t, err, services.ErrInvalidPaymentMethod)

	assert.Equal(t, 4, f.sessions.Get("ana@example.com").TotalItems())
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutService_DefaultsPaymentToCash(t *testing.T) {
	f := newCheckoutFixture(t)
	form := validForm
	form.PaymentMethod = ""
	form.DeliveryName = "Luis"

	f.orders.On("Create", f.ctx, mock.MatchedBy(func(req *models.OrderRequest) bool {
		return req.PaymentMethod == models.PaymentCash && req.DeliveryName == "Luis"
	})).Return(&models.Order{ID: 1, OrderNumber: "ORD-000001"}, nil).Once()
	f.publisher.On("PublishCheckoutCompleted", mock.Anything).Return(errors.New("broker down")).Once()

	_, err := f.service.Checkout(f.ctx, "ana@example.com", form)
	assert.NoError(t, err)
	f.orders.AssertExpectations(t)
}
