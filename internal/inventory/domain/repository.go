package domain

import (
	"context"
	"time"
)

// ItemRepository defines the contract for item data access.
// Lookups return an ErrNotFound-kind error when nothing matches.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id uint) (*Item, error)
	FindByBarcode(ctx context.Context, barcode string) (*Item, error)
	// FindByName returns the first match by id order; names are not unique.
	FindByName(ctx context.Context, name string) (*Item, error)
	// FindByNameAndExpiry locks the matching row when called inside a transaction.
	FindByNameAndExpiry(ctx context.Context, name string, expiry *time.Time) (*Item, error)
	FindAll(ctx context.Context) ([]Item, error)
	AddQuantity(ctx context.Context, id uint, amount int) error
	// DecrementQuantity subtracts amount atomically and returns the updated item.
	// A missing row or short stock yields *InsufficientStockError.
	DecrementQuantity(ctx context.Context, id uint, amount int) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uint) error
}

// SaleRepository defines the contract for the sales ledger
type SaleRepository interface {
	Record(ctx context.Context, sale *SaleEvent) error
	ListByItem(ctx context.Context, itemID uint) ([]SaleEvent, error)
	// TotalSoldByItem sums sales per current item name. Items with no sales
	// map to zero; events of deleted items are ignored.
	TotalSoldByItem(ctx context.Context) (map[string]int, error)
}

// ReorderRepository stores dispatch outcomes
type ReorderRepository interface {
	Save(ctx context.Context, order *ReorderOrder) error
	FindRecent(ctx context.Context, limit int) ([]ReorderOrder, error)
}

// TxManager runs fn in a transaction. Repositories called with the ctx passed
// to fn join that transaction; nested calls join the outer one.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
