// Package policy evaluates stock levels against the warning threshold and
// per-item reorder settings.
package policy

import (
	"sort"
	"sync/atomic"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

// DefaultThreshold is the low-stock warning threshold used until one is set
const DefaultThreshold = 5

// ThresholdStore holds the process-wide low-stock threshold. Reads and writes
// are atomic; a rejected write keeps the previous value.
type ThresholdStore struct {
	value atomic.Int64
}

// NewThresholdStore creates a store holding initial, or DefaultThreshold when
// initial is not positive
func NewThresholdStore(initial int) *ThresholdStore {
	if initial <= 0 {
		initial = DefaultThreshold
	}
	s := &ThresholdStore{}
	s.value.Store(int64(initial))
	return s
}

// Get returns the current threshold
func (s *ThresholdStore) Get() int {
	return int(s.value.Load())
}

// Set replaces the threshold. Values below one are rejected.
func (s *ThresholdStore) Set(threshold int) error {
	if threshold <= 0 {
		return domain.ValidationError("threshold must be a positive integer, got %d", threshold)
	}
	s.value.Store(int64(threshold))
	return nil
}

// LowStockItems returns the distinct names of items whose quantity is strictly
// below threshold, sorted
func LowStockItems(items []domain.Item, threshold int) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, item := range items {
		if item.Quantity >= threshold {
			continue
		}
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		names = append(names, item.Name)
	}
	sort.Strings(names)
	return names
}

// IsReorderEligible reports whether item should be reordered: it has a
// restock threshold, quantity below it, a supplier and a positive order quantity.
func IsReorderEligible(item domain.Item) bool {
	if item.RestockThreshold == nil || item.OrderQuantity == nil {
		return false
	}
	if item.SupplierName() == "" || *item.OrderQuantity <= 0 {
		return false
	}
	return item.Quantity < *item.RestockThreshold
}

// ReorderEligible filters items down to the reorder-eligible ones, keeping order
func ReorderEligible(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0)
	for _, item := range items {
		if IsReorderEligible(item) {
			out = append(out, item)
		}
	}
	return out
}
