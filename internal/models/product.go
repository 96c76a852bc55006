package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory groups products in the catalog.
type ProductCategory string

const (
	CategoryMilk   ProductCategory = "LECHE"
	CategoryMeat   ProductCategory = "CARNE"
	CategoryCheese ProductCategory = "QUESO"
	CategoryYogurt ProductCategory = "YOGURT"
	CategoryOther  ProductCategory = "OTROS"
)

// Categories lists every category in display order.
var Categories = []ProductCategory{CategoryMilk, CategoryMeat, CategoryCheese, CategoryYogurt, CategoryOther}

var categoryNames = map[ProductCategory]string{
	CategoryMilk:   "Leche y Derivados",
	CategoryMeat:   "Carne Caprina",
	CategoryCheese: "Quesos",
	CategoryYogurt: "Yogurt y Bebidas",
	CategoryOther:  "Otros Productos",
}

// DisplayName returns the human readable category name.
func (c ProductCategory) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c ProductCategory) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ProductStatus is the availability of a product.
type ProductStatus string

const (
	StatusAvailable    ProductStatus = "DISPONIBLE"
	StatusOutOfStock   ProductStatus = "AGOTADO"
	StatusDiscontinued ProductStatus = "DESCONTINUADO"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	return s == StatusAvailable || s == StatusOutOfStock || s == StatusDiscontinued
}

// Product represents a product in the store catalog.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    ProductCategory `json:"category"`
	Status      ProductStatus   `json:"status"`
	ImageURL    string          `json:"imageUrl"`
	Unit        string          `json:"unit"` // kg, litro, unidad, etc.
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Purchasable reports whether the product can be put in a cart right now.
func (p *Product) Purchasable() bool {
	return p.Active && p.Status == StatusAvailable && p.Stock > 0
}

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    ProductCategory `json:"category" validate:"required"`
	Status      ProductStatus   `json:"status,omitempty"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
	Unit        string          `json:"unit" validate:"required,max=30"`
}

// ProductStats summarizes the catalog for admin screens.
type ProductStats struct {
	TotalProducts      int64 `json:"totalProducts"`
	AvailableProducts  int64 `json:"availableProducts"`
	OutOfStockProducts int64 `json:"outOfStockProducts"`
	LowStockProducts   int64 `json:"lowStockProducts"`
}
