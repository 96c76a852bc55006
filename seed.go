package main

import (
	"context"
	"fmt"

	"capristore/internal/models"
	"capristore/internal/repositories"

	"github.com/shopspring/decimal"
)

// seedCatalog fills the in-memory catalog so the gateway is usable without a backend.
func seedCatalog(ctx context.Context, repo repositories.ProductRepository) error {
	products := []models.ProductInput{
		{Name: "Leche de cabra entera", Description: "Leche fresca pasteurizada", Price: decimal.RequireFromString("6500"), Stock: 40, Category: models.CategoryMilk, Unit: "litro"},
		{Name: "Queso de cabra madurado", Description: "Maduración de 60 días", Price: decimal.RequireFromString("18900"), Stock: 12, Category: models.CategoryCheese, Unit: "libra"},
		{Name: "Yogurt natural de cabra", Description: "Sin azúcar añadida", Price: decimal.RequireFromString("7200"), Stock: 25, Category: models.CategoryYogurt, Unit: "litro"},
		{Name: "Carne de cabrito", Description: "Corte para asar", Price: decimal.RequireFromString("32000"), Stock: 8, Category: models.CategoryMeat, Unit: "kilo"},
	}
	for i := range products {
		if _, err := repo.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
	}
	return nil
}
