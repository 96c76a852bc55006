package services_test

import (
	"context"

	"capristore/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) products(args mock.Arguments) ([]models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) product(args mock.Arguments) (*models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductRepository) GetByCategory(ctx context.Context, category models.ProductCategory) ([]models.Product, error) {
	return m.products(m.Called(ctx, category))
}

func (m *MockProductRepository) GetByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	return m.products(m.Called(ctx, status))
}

func (m *MockProductRepository) Search(ctx context.Context, name string) ([]models.Product, error) {
	return m.products(m.Called(ctx, name))
}

func (m *MockProductRepository) Create(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	return m.product(m.Called(ctx, input))
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	return m.product(m.Called(ctx, id, input))
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) AddStock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	return m.product(m.Called(ctx, id, quantity))
}

func (m *MockProductRepository) ReduceStock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	return m.product(m.Called(ctx, id, quantity))
}

func (m *MockProductRepository) MarkOutOfStock(ctx context.Context, id int64) (*models.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return m.products(m.Called(ctx, threshold))
}

func (m *MockProductRepository) Stats(ctx context.Context) (*models.ProductStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductStats), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) order(args mock.Arguments) (*models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) orders(args mock.Arguments) ([]models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	return m.order(m.Called(ctx, req))
}

func (m *MockOrderRepository) GetMine(ctx context.Context) ([]models.Order, error) {
	return m.orders(m.Called(ctx))
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderRepository) Cancel(ctx context.Context, id int64, reason string) (*models.Order, error) {
	return m.order(m.Called(ctx, id, reason))
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return m.orders(m.Called(ctx))
}

func (m *MockOrderRepository) GetByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return m.orders(m.Called(ctx, status))
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	return m.order(m.Called(ctx, id, status))
}

func (m *MockOrderRepository) Stats(ctx context.Context) (*models.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderStats), args.Error(1)
}

// MockAuthRepository is a mock implementation of repositories.AuthRepository
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthRepository) Register(ctx context.Context, req *models.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthRepository) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthRepository) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthRepository) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
