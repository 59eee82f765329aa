// Package memory provides in-process implementations of the inventory
// repositories with the same transactional contract as the gorm ones.
// A transaction holds the store lock until it finishes and restores the
// previous state when fn fails.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

type txKey struct{}

// Store holds items, sales and reorder history
type Store struct {
	mu sync.Mutex

	items       map[uint]domain.Item
	sales       []domain.SaleEvent
	orders      []domain.ReorderOrder
	nextItemID  uint
	nextSaleID  uint
	nextOrderID uint

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		items: make(map[uint]domain.Item),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Items returns the item repository view of the store
func (s *Store) Items() *ItemRepository { return &ItemRepository{s: s} }

// Sales returns the sales ledger view of the store
func (s *Store) Sales() *SaleRepository { return &SaleRepository{s: s} }

// Reorders returns the reorder history view of the store
func (s *Store) Reorders() *ReorderRepository { return &ReorderRepository{s: s} }

// WithinTx runs fn while holding the store lock
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// do runs fn under the lock unless ctx already holds it through WithinTx
func (s *Store) do(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	items                               map[uint]domain.Item
	sales, orders                       int
	nextItemID, nextSaleID, nextOrderID uint
}

func (s *Store) snapshot() snapshot {
	items := make(map[uint]domain.Item, len(s.items))
	for id, item := range s.items {
		items[id] = item
	}
	return snapshot{
		items:       items,
		sales:       len(s.sales),
		orders:      len(s.orders),
		nextItemID:  s.nextItemID,
		nextSaleID:  s.nextSaleID,
		nextOrderID: s.nextOrderID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.items = snap.items
	s.sales = s.sales[:snap.sales]
	s.orders = s.orders[:snap.orders]
	s.nextItemID = snap.nextItemID
	s.nextSaleID = snap.nextSaleID
	s.nextOrderID = snap.nextOrderID
}

// sortedItems returns the items in id order
func (s *Store) sortedItems() []domain.Item {
	out := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) barcodeTaken(barcode *string, exceptID uint) bool {
	if barcode == nil {
		return false
	}
	for id, item := range s.items {
		if id != exceptID && item.Barcode != nil && *item.Barcode == *barcode {
			return true
		}
	}
	return false
}

// ItemRepository is the in-memory item repository
type ItemRepository struct{ s *Store }

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.s.do(ctx, func() error {
		if r.s.barcodeTaken(item.Barcode, 0) {
			return domain.ConflictError("barcode %q is already assigned", *item.Barcode)
		}
		if item.ExpiryDate != nil {
			d := domain.NormalizeDate(*item.ExpiryDate)
			item.ExpiryDate = &d
		}
		for _, other := range r.s.items {
			if other.Name == item.Name && domain.SameExpiry(other.ExpiryDate, item.ExpiryDate) {
				return domain.ConflictError("item %q with the same expiry date already exists as %d", item.Name, other.ID)
			}
		}
		r.s.nextItemID++
		now := r.s.now()
		item.ID = r.s.nextItemID
		item.CreatedAt, item.UpdatedAt = now, now
		r.s.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepository) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	var found domain.Item
	err := r.s.do(ctx, func() error {
		item, ok := r.s.items[id]
		if !ok {
			return domain.NotFoundError("item %d", id)
		}
		found = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *ItemRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Item, error) {
	return r.first(ctx, func(item domain.Item) bool {
		return item.Barcode != nil && *item.Barcode == barcode
	}, "item with barcode %q", barcode)
}

func (r *ItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	return r.first(ctx, func(item domain.Item) bool {
		return item.Name == name
	}, "item named %q", name)
}

func (r *ItemRepository) FindByNameAndExpiry(ctx context.Context, name string, expiry *time.Time) (*domain.Item, error) {
	return r.first(ctx, func(item domain.Item) bool {
		return item.Name == name && domain.SameExpiry(item.ExpiryDate, expiry)
	}, "item named %q", name)
}

func (r *ItemRepository) first(ctx context.Context, match func(domain.Item) bool, format string, arg interface{}) (*domain.Item, error) {
	var found *domain.Item
	err := r.s.do(ctx, func() error {
		for _, item := range r.s.sortedItems() {
			if match(item) {
				item := item
				found = &item
				return nil
			}
		}
		return domain.NotFoundError(format, arg)
	})
	return found, err
}

func (r *ItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	err := r.s.do(ctx, func() error {
		items = r.s.sortedItems()
		return nil
	})
	return items, err
}

func (r *ItemRepository) AddQuantity(ctx context.Context, id uint, amount int) error {
	return r.s.do(ctx, func() error {
		item, ok := r.s.items[id]
		if !ok {
			return domain.NotFoundError("item %d", id)
		}
		if amount > 0 && item.Quantity > math.MaxInt-amount {
			return domain.ValidationError("quantity of item %d would overflow", id)
		}
		item.Quantity += amount
		item.UpdatedAt = r.s.now()
		r.s.items[id] = item
		return nil
	})
}

func (r *ItemRepository) DecrementQuantity(ctx context.Context, id uint, amount int) (*domain.Item, error) {
	var updated domain.Item
	err := r.s.do(ctx, func() error {
		item, ok := r.s.items[id]
		if !ok {
			return &domain.InsufficientStockError{ItemID: id, Requested: amount, Available: 0}
		}
		if item.Quantity < amount {
			return &domain.InsufficientStockError{ItemID: id, Requested: amount, Available: item.Quantity}
		}
		item.Quantity -= amount
		item.UpdatedAt = r.s.now()
		r.s.items[id] = item
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	return r.s.do(ctx, func() error {
		if _, ok := r.s.items[item.ID]; !ok {
			return domain.NotFoundError("item %d", item.ID)
		}
		if r.s.barcodeTaken(item.Barcode, item.ID) {
			return domain.ConflictError("barcode %q is already assigned", *item.Barcode)
		}
		item.UpdatedAt = r.s.now()
		r.s.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepository) Delete(ctx context.Context, id uint) error {
	return r.s.do(ctx, func() error {
		if _, ok := r.s.items[id]; !ok {
			return domain.NotFoundError("item %d", id)
		}
		delete(r.s.items, id)
		return nil
	})
}

// SaleRepository is the in-memory sales ledger
type SaleRepository struct{ s *Store }

func (r *SaleRepository) Record(ctx context.Context, sale *domain.SaleEvent) error {
	return r.s.do(ctx, func() error {
		r.s.nextSaleID++
		sale.ID = r.s.nextSaleID
		if sale.SaleDate.IsZero() {
			sale.SaleDate = r.s.now()
		}
		r.s.sales = append(r.s.sales, *sale)
		return nil
	})
}

func (r *SaleRepository) ListByItem(ctx context.Context, itemID uint) ([]domain.SaleEvent, error) {
	out := make([]domain.SaleEvent, 0)
	err := r.s.do(ctx, func() error {
		for _, sale := range r.s.sales {
			if sale.ItemID == itemID {
				out = append(out, sale)
			}
		}
		return nil
	})
	return out, err
}

func (r *SaleRepository) TotalSoldByItem(ctx context.Context) (map[string]int, error) {
	totals := make(map[string]int)
	err := r.s.do(ctx, func() error {
		for _, item := range r.s.items {
			if _, ok := totals[item.Name]; !ok {
				totals[item.Name] = 0
			}
		}
		for _, sale := range r.s.sales {
			if item, ok := r.s.items[sale.ItemID]; ok {
				totals[item.Name] += sale.QuantitySold
			}
		}
		return nil
	})
	return totals, err
}

// ReorderRepository is the in-memory reorder history
type ReorderRepository struct{ s *Store }

func (r *ReorderRepository) Save(ctx context.Context, order *domain.ReorderOrder) error {
	return r.s.do(ctx, func() error {
		r.s.nextOrderID++
		order.ID = r.s.nextOrderID
		if order.RequestedAt.IsZero() {
			order.RequestedAt = r.s.now()
		}
		r.s.orders = append(r.s.orders, *order)
		return nil
	})
}

func (r *ReorderRepository) FindRecent(ctx context.Context, limit int) ([]domain.ReorderOrder, error) {
	out := make([]domain.ReorderOrder, 0)
	err := r.s.do(ctx, func() error {
		for i := len(r.s.orders) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
			out = append(out, r.s.orders[i])
		}
		return nil
	})
	return out, err
}
