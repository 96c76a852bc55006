package services_test

import (
	"context"
	"errors"
	"testing"

	"capristore/internal/cart"
	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedCatalog(t *testing.T) (*repositories.MockProductRepository, *models.Product, *models.Product) {
	t.Helper()
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()
	milk, err := repo.Create(ctx, &models.ProductInput{Name: "Leche de cabra", Price: price("2500.50"), Stock: 5, Category: models.CategoryMilk, Unit: "litro"})
	require.NoError(t, err)
	cheese, err := repo.Create(ctx, &models.ProductInput{Name: "Queso", Price: price("9000"), Stock: 0, Category: models.CategoryCheese, Unit: "kg"})
	require.NoError(t, err)
	return repo, milk, cheese
}

func TestCartService_AddAndClamp(t *testing.T) {
	repo, milk, _ := seedCatalog(t)
	svc := services.NewCartService(cart.NewSessions(0, zap.NewNop()), repo)
	ctx := context.Background()

	summary, err := svc.Add(ctx, "ana", milk.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalItems)

	summary, err = svc.Add(ctx, "ana", milk.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalItems)
	assert.True(t, price("12502.50").Equal(summary.TotalPrice))
}

func TestCartService_AddRejectsUnavailableProducts(t *testing.T) {
	repo, _, cheese := seedCatalog(t)
	svc := services.NewCartService(cart.NewSessions(0, zap.NewNop()), repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, "ana", cheese.ID, 1)
	assert.True(t, errors.Is(err, repositories.ErrConflict))

	_, err = svc.Add(ctx, "ana", 999, 1)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	_, err = svc.Add(ctx, "ana", cheese.ID, 0)
	assert.True(t, errors.Is(err, repositories.ErrInvalidInput))

	assert.True(t, svc.Store("ana").IsEmpty())
}

func TestCartService_LineOperations(t *testing.T) {
	repo, milk, _ := seedCatalog(t)
	svc := services.NewCartService(cart.NewSessions(0, zap.NewNop()), repo)
	ctx := context.Background()

	_, err := svc.Increment("ana", milk.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	_, err = svc.Add(ctx, "ana", milk.ID, 1)
	require.NoError(t, err)

	summary, err := svc.Update("ana", milk.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalItems)

	summary, _ = svc.Increment("ana", milk.ID)
	summary, _ = svc.Increment("ana", milk.ID)
	assert.Equal(t, 5, summary.TotalItems)

	summary, _ = svc.Decrement("ana", milk.ID)
	assert.Equal(t, 4, summary.TotalItems)

	_, err = svc.Update("ana", milk.ID, 0)
	assert.True(t, errors.Is(err, repositories.ErrInvalidInput))

	summary, err = svc.Remove("ana", milk.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	repo, milk, _ := seedCatalog(t)
	svc := services.NewCartService(cart.NewSessions(0, zap.NewNop()), repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, "ana", milk.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Summary("ana").TotalItems)
	assert.Equal(t, 0, svc.Summary("luis").TotalItems)

	assert.Equal(t, 0, svc.Clear("ana").TotalItems)
}
