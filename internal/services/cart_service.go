package services

import (
	"context"
	"fmt"

	"capristore/internal/cart"
	"capristore/internal/models"
	"capristore/internal/repositories"
)

// CartService puts catalog products into session carts. The store keeps
// quantities consistent; this layer reports what the store silently ignores.
type CartService struct {
	sessions *cart.Sessions
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(sessions *cart.Sessions, products repositories.ProductRepository) *CartService {
	return &CartService{
		sessions: sessions,
		products: products,
	}
}

// Store returns the cart of a session, creating it if needed.
func (s *CartService) Store(session string) *cart.Store {
	return s.sessions.Get(session)
}

// Touch keeps the session alive and reports whether it is still open.
func (s *CartService) Touch(session string) bool {
	return s.sessions.Touch(session)
}

// Summary returns a consistent read of the session's cart.
func (s *CartService) Summary(session string) cart.Summary {
	return s.sessions.Get(session).Snapshot()
}

// Add loads the product and adds quantity units of it to the cart.
func (s *CartService) Add(ctx context.Context, session string, productID int64, quantity int) (cart.Summary, error) {
	if quantity < 1 {
		return cart.Summary{}, fmt.Errorf("quantity must be at least 1: %w", repositories.ErrInvalidInput)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return cart.Summary{}, err
	}
	if !product.Purchasable() {
		return cart.Summary{}, fmt.Errorf("product %s is out of stock: %w", product.Name, repositories.ErrConflict)
	}

	store := s.sessions.Get(session)
	store.AddItem(toCartProduct(product), quantity)
	return store.Snapshot(), nil
}

// Update sets the quantity of a product already in the cart, clamped to stock.
func (s *CartService) Update(session string, productID int64, quantity int) (cart.Summary, error) {
	if quantity < 1 {
		return cart.Summary{}, fmt.Errorf("quantity must be at least 1: %w", repositories.ErrInvalidInput)
	}
	store, err := s.storeWith(session, productID)
	if err != nil {
		return cart.Summary{}, err
	}
	store.UpdateQuantity(productID, quantity)
	return store.Snapshot(), nil
}

// Increment adds one unit, up to the stock.
func (s *CartService) Increment(session string, productID int64) (cart.Summary, error) {
	store, err := s.storeWith(session, productID)
	if err != nil {
		return cart.Summary{}, err
	}
	store.Increment(productID)
	return store.Snapshot(), nil
}

// Decrement removes one unit; the last unit stays until the item is removed.
func (s *CartService) Decrement(session string, productID int64) (cart.Summary, error) {
	store, err := s.storeWith(session, productID)
	if err != nil {
		return cart.Summary{}, err
	}
	store.Decrement(productID)
	return store.Snapshot(), nil
}

// Remove drops a product from the cart.
func (s *CartService) Remove(session string, productID int64) (cart.Summary, error) {
	store, err := s.storeWith(session, productID)
	if err != nil {
		return cart.Summary{}, err
	}
	store.RemoveItem(productID)
	return store.Snapshot(), nil
}

// Clear empties the cart.
func (s *CartService) Clear(session string) cart.Summary {
	store := s.sessions.Get(session)
	store.Clear()
	return store.Snapshot()
}

func (s *CartService) storeWith(session string, productID int64) (*cart.Store, error) {
	store := s.sessions.Get(session)
	for _, item := range store.Items() {
		if item.ProductID == productID {
			return store, nil
		}
	}
	return nil, fmt.Errorf("product %d is not in the cart: %w", productID, repositories.ErrNotFound)
}

func toCartProduct(p *models.Product) cart.Product {
	return cart.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Unit:     p.Unit,
		ImageURL: p.ImageURL,
	}
}
