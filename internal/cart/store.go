package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product is the snapshot of a catalog product the store copies into a line item.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Stock    int
	Unit     string
	ImageURL string
}

// LineItem represents a single product and the quantity of it selected.
type LineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	ImageURL  string          `json:"imageUrl"`
	Price     decimal.Decimal `json:"price"` // Price at the time the item was added
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// Subtotal returns price * quantity for the line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Summary is a consistent read of the cart handed to presentation layers.
type Summary struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Listener is called synchronously after every mutation of the store.
type Listener func(Summary)

// Store owns the line items of one shopping session.
// Quantities are kept within [1, stock]; out of range requests clamp or are ignored.
type Store struct {
	mu        sync.Mutex
	order     []int64
	items     map[int64]*LineItem
	listeners []subscription
	nextSubID uint64
}

type subscription struct {
	id uint64
	fn Listener
}

// NewStore creates an empty cart.
func NewStore() *Store {
	return &Store{
		items: make(map[int64]*LineItem),
	}
}

// AddItem inserts the product or merges it into the existing line item.
// Quantities <= 0 and products without stock are ignored.
func (s *Store) AddItem(p Product, quantity int) {
	if quantity <= 0 || p.Stock < 1 {
		return
	}

	s.mu.Lock()
	if existing, ok := s.items[p.ID]; ok {
		merged := min(existing.Quantity+quantity, p.Stock)
		if merged == existing.Quantity && p.Stock == existing.Stock {
			s.mu.Unlock()
			return
		}
		existing.Stock = p.Stock
		existing.Quantity = merged
	} else {
		s.items[p.ID] = &LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Unit:      p.Unit,
			ImageURL:  p.ImageURL,
			Price:     p.Price,
			Quantity:  min(quantity, p.Stock),
			Stock:     p.Stock,
		}
		s.order = append(s.order, p.ID)
	}
	s.notifyLocked()
}

// UpdateQuantity replaces the quantity of an existing line item.
// Unknown products and quantities below 1 are ignored; values above stock clamp to stock.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	item, ok := s.items[productID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.setQuantityLocked(item, quantity)
}

// Increment raises the quantity by one, bounded by stock.
func (s *Store) Increment(productID int64) {
	s.adjust(productID, 1)
}

// Decrement lowers the quantity by one. It never removes the item.
func (s *Store) Decrement(productID int64) {
	s.adjust(productID, -1)
}

// Deduct takes ordered quantities out of the cart, removing lines that reach
// zero. Lines added or raised after the order was taken keep the difference.
func (s *Store) Deduct(ordered []LineItem) {
	s.mu.Lock()
	changed := false
	for _, o := range ordered {
		item, ok := s.items[o.ProductID]
		if !ok || o.Quantity <= 0 {
			continue
		}
		changed = true
		if item.Quantity > o.Quantity {
			item.Quantity -= o.Quantity
			continue
		}
		s.removeLocked(o.ProductID)
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.notifyLocked()
}

// RemoveItem deletes the line item if present.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	if _, ok := s.items[productID]; !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(productID)
	s.notifyLocked()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[int64]*LineItem)
	s.order = nil
	s.notifyLocked()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

// TotalItems is the sum of quantities over all line items.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price * quantity over all line items.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no line items.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Snapshot returns items and totals computed from the same state.
func (s *Store) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

// Subscribe registers fn and returns a function that detaches it.
// Calling the returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Watch returns a channel carrying the newest summary after each mutation.
// A reader that falls behind skips intermediate summaries. stop detaches it.
func (s *Store) Watch() (updates <-chan Summary, stop func()) {
	ch := make(chan Summary, 1)
	var mu sync.Mutex
	stop = s.Subscribe(func(summary Summary) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-ch:
		default:
		}
		ch <- summary
	})
	return ch, stop
}

func (s *Store) adjust(productID int64, delta int) {
	s.mu.Lock()
	item, ok := s.items[productID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.setQuantityLocked(item, item.Quantity+delta)
}

// setQuantityLocked must be called with s.mu held; it always releases it.
// Quantities below 1 and writes that change nothing are ignored.
func (s *Store) setQuantityLocked(item *LineItem, quantity int) {
	quantity = min(quantity, item.Stock)
	if quantity < 1 || quantity == item.Quantity {
		s.mu.Unlock()
		return
	}
	item.Quantity = quantity
	s.notifyLocked()
}

// removeLocked must be called with s.mu held.
func (s *Store) removeLocked(productID int64) {
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) itemsLocked() []LineItem {
	items := make([]LineItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, *s.items[id])
	}
	return items
}

func (s *Store) summaryLocked() Summary {
	summary := Summary{Items: s.itemsLocked(), TotalPrice: decimal.Zero}
	for _, item := range summary.Items {
		summary.TotalItems += item.Quantity
		summary.TotalPrice = summary.TotalPrice.Add(item.Subtotal())
	}
	return summary
}

// notifyLocked must be called with s.mu held; it releases the lock before
// invoking listeners so a listener may read the store.
func (s *Store) notifyLocked() {
	summary := s.summaryLocked()
	listeners := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}
}
