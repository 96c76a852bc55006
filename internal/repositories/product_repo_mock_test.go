package repositories_test

import (
	"context"
	"errors"
	"testing"

	"capristore/internal/models"
	"capristore/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductInput(name string, stock int) *models.ProductInput {
	return &models.ProductInput{
		Name:     name,
		Price:    decimal.RequireFromString("2500.50"),
		Stock:    stock,
		Category: models.CategoryMilk,
		Unit:     "litro",
	}
}

func TestMockProductRepository_CreateSetsStatusFromStock(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()

	milk, err := repo.Create(ctx, newProductInput("Leche de cabra", 5))
	require.NoError(t, err)
	empty, err := repo.Create(ctx, newProductInput("Queso", 0))
	require.NoError(t, err)

	assert.Equal(t, models.StatusAvailable, milk.Status)
	assert.True(t, milk.Active)
	assert.Equal(t, models.StatusOutOfStock, empty.Status)
	assert.NotEqual(t, milk.ID, empty.ID)
}

func TestMockProductRepository_ReduceStockToZeroMarksOutOfStock(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()
	p, _ := repo.Create(ctx, newProductInput("Leche", 2))

	updated, err := repo.ReduceStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, models.StatusOutOfStock, updated.Status)

	_, err = repo.ReduceStock(ctx, p.ID, 1)
	assert.True(t, errors.Is(err, repositories.ErrConflict))

	restocked, err := repo.AddStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, restocked.Stock)
	assert.Equal(t, models.StatusAvailable, restocked.Status)
}

func TestMockProductRepository_StockQuantityMustBePositive(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()
	p, _ := repo.Create(ctx, newProductInput("Leche", 2))

	_, err := repo.AddStock(ctx, p.ID, 0)
	assert.True(t, errors.Is(err, repositories.ErrInvalidInput))
	_, err = repo.ReduceStock(ctx, p.ID, -1)
	assert.True(t, errors.Is(err, repositories.ErrInvalidInput))
}

func TestMockProductRepository_DeleteHidesProduct(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()
	p, _ := repo.Create(ctx, newProductInput("Leche", 2))

	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	all, _ := repo.GetAll(ctx)
	assert.Empty(t, all)
	assert.True(t, errors.Is(repo.Delete(ctx, p.ID), repositories.ErrNotFound))
}

func TestMockProductRepository_SearchAndLowStock(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()
	_, _ = repo.Create(ctx, newProductInput("Leche entera", 50))
	_, _ = repo.Create(ctx, newProductInput("Queso fresco", 4))
	_, _ = repo.Create(ctx, newProductInput("LECHE descremada", 8))

	found, err := repo.Search(ctx, "leche")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	low, err := repo.LowStock(ctx, 8)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Queso fresco", low[0].Name)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalProducts)
	assert.EqualValues(t, 3, stats.AvailableProducts)
	assert.EqualValues(t, 2, stats.LowStockProducts)
}
