package models

import "github.com/shopspring/decimal"

// FeedProduct is a product record from either inventory feed, normalized so
// the two systems can be compared side by side.
type FeedProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit"`
	Stock int             `json:"stock"`
}

// ProductMatch pairs a local product with the external product of the same name.
type ProductMatch struct {
	Name       string          `json:"name"`
	Local      FeedProduct     `json:"local"`
	External   FeedProduct     `json:"external"`
	PriceDiff  decimal.Decimal `json:"priceDiff"` // external - local
	StockDiff  int             `json:"stockDiff"` // external - local
	UnitsMatch bool            `json:"unitsMatch"`
}

// ReconciliationReport compares the local inventory against the external feed.
type ReconciliationReport struct {
	Local        []FeedProduct  `json:"local"`
	External     []FeedProduct  `json:"external"`
	Matches      []ProductMatch `json:"matches"`
	OnlyLocal    []FeedProduct  `json:"onlyLocal"`
	OnlyExternal []FeedProduct  `json:"onlyExternal"`
	ExternalErr  string         `json:"externalError,omitempty"`
}
