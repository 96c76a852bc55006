package services_test

import (
	"context"
	"errors"
	"testing"

	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo)
	ctx := context.Background()

	repo.On("UpdateStatus", ctx, int64(4), models.OrderShipped).Return(&models.Order{ID: 4, Status: models.OrderShipped}, nil).Once()

	order, err := svc.UpdateOrderStatus(ctx, 4, "ENVIADO")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, order.Status)
	repo.AssertExpectations(t)
}

func TestOrderService_RejectsUnknownStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo)
	ctx := context.Background()

	_, err := svc.UpdateOrderStatus(ctx, 4, "SHIPPED")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = svc.OrdersByStatus(ctx, "pendiente")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "GetByStatus", mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrderWrapsRepositoryError(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo)
	ctx := context.Background()

	repo.On("Cancel", ctx, int64(9), "changed my mind").Return(nil, repositories.ErrConflict).Once()

	_, err := svc.CancelOrder(ctx, 9, "changed my mind")
	assert.True(t, errors.Is(err, repositories.ErrConflict))
}

func TestOrderService_Options(t *testing.T) {
	svc := services.NewOrderService(new(MockOrderRepository))

	statuses := svc.Statuses()
	require.Len(t, statuses, 6)
	assert.Equal(t, models.Option{Value: "PENDIENTE", DisplayName: "Pendiente"}, statuses[0])
	assert.Equal(t, "En Preparación", statuses[2].DisplayName)

	methods := svc.PaymentMethods()
	require.Len(t, methods, 3)
	assert.Equal(t, models.Option{Value: "CASH", DisplayName: "Efectivo"}, methods[0])
}
