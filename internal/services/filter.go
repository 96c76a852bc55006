package services

import (
	"strings"

	"capristore/internal/models"

	"github.com/shopspring/decimal"
)

// ProductFilter narrows a product list. Zero fields do not filter.
type ProductFilter struct {
	Search   string
	Category models.ProductCategory
	Status   models.ProductStatus
	Unit     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// IsZero reports whether the filter lets every product through.
func (f ProductFilter) IsZero() bool {
	return f == ProductFilter{}
}

// Matches reports whether a catalog product passes the filter. The search
// term may match the name or the description.
func (f ProductFilter) Matches(p models.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
		return false
	}
	return f.matchesUnitAndPrice(p.Unit, p.Price)
}

// Apply returns the products that pass the filter, keeping their order.
func (f ProductFilter) Apply(products []models.Product) []models.Product {
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// ApplyFeed filters feed records. Feeds carry no category or status, so only
// the name, unit and price bounds apply.
func (f ProductFilter) ApplyFeed(records []models.FeedProduct) []models.FeedProduct {
	filtered := make([]models.FeedProduct, 0, len(records))
	for _, r := range records {
		if f.Search != "" && !containsFold(r.Name, f.Search) {
			continue
		}
		if f.matchesUnitAndPrice(r.Unit, r.Price) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (f ProductFilter) matchesUnitAndPrice(unit string, price decimal.Decimal) bool {
	if f.Unit != "" && !strings.EqualFold(unit, f.Unit) {
		return false
	}
	if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
