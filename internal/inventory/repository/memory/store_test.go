package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	items, sales := s.Items(), s.Sales()

	milk := &domain.Item{Name: "Milk", Quantity: 10}
	require.NoError(t, items.Create(ctx, milk))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := items.DecrementQuantity(ctx, milk.ID, 4)
		require.NoError(t, err)
		require.NoError(t, sales.Record(ctx, &domain.SaleEvent{ItemID: milk.ID, QuantitySold: 4}))
		require.NoError(t, items.Create(ctx, &domain.Item{Name: "Bread", Quantity: 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := items.FindByID(ctx, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	all, _ := items.FindAll(ctx)
	assert.Len(t, all, 1)

	history, _ := sales.ListByItem(ctx, milk.ID)
	assert.Empty(t, history)
}

func TestDecrementQuantity_ConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	items := s.Items()
	item := &domain.Item{Name: "Headphones", Quantity: 5}
	require.NoError(t, items.Create(ctx, item))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := items.DecrementQuantity(ctx, item.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	got, _ := items.FindByID(ctx, item.ID)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, got.Quantity)
}

func TestDecrementQuantity_MissingItem(t *testing.T) {
	_, err := NewStore().Items().DecrementQuantity(context.Background(), 42, 1)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
}

func TestBarcodeUniqueness(t *testing.T) {
	ctx := context.Background()
	items := NewStore().Items()
	code := "123"

	require.NoError(t, items.Create(ctx, &domain.Item{Name: "Laptop", Barcode: &code}))
	err := items.Create(ctx, &domain.Item{Name: "Tablet", Barcode: &code})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := items.FindByBarcode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", found.Name)
}

func TestFindByNameAndExpiry_DistinguishesDates(t *testing.T) {
	ctx := context.Background()
	items := NewStore().Items()
	june := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, items.Create(ctx, &domain.Item{Name: "Milk", Quantity: 1, ExpiryDate: &june}))
	require.NoError(t, items.Create(ctx, &domain.Item{Name: "Milk", Quantity: 2}))

	got, err := items.FindByNameAndExpiry(ctx, "Milk", &june)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	got, err = items.FindByNameAndExpiry(ctx, "Milk", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	_, err = items.FindByNameAndExpiry(ctx, "Milk", &july)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first, err := items.FindByName(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
}

func TestTotalSoldByItem(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	items, sales := s.Items(), s.Sales()

	milk := &domain.Item{Name: "Milk", Quantity: 10}
	bread := &domain.Item{Name: "Bread", Quantity: 10}
	gone := &domain.Item{Name: "Gone", Quantity: 10}
	for _, it := range []*domain.Item{milk, bread, gone} {
		require.NoError(t, items.Create(ctx, it))
	}
	require.NoError(t, sales.Record(ctx, &domain.SaleEvent{ItemID: milk.ID, QuantitySold: 3}))
	require.NoError(t, sales.Record(ctx, &domain.SaleEvent{ItemID: milk.ID, QuantitySold: 2}))
	require.NoError(t, sales.Record(ctx, &domain.SaleEvent{ItemID: gone.ID, QuantitySold: 1}))
	require.NoError(t, items.Delete(ctx, gone.ID))

	totals, err := sales.TotalSoldByItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Milk": 5, "Bread": 0}, totals)

	history, _ := sales.ListByItem(ctx, gone.ID)
	assert.Len(t, history, 1)
}

func TestReorderHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	reorders := NewStore().Reorders()
	for i := 1; i <= 3; i++ {
		require.NoError(t, reorders.Save(ctx, &domain.ReorderOrder{ItemID: uint(i), ItemName: "x", Status: domain.OrderPlaced}))
	}

	recent, err := reorders.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint(3), recent[0].ItemID)
	assert.Equal(t, uint(2), recent[1].ItemID)
}

func TestCreate_RejectsDuplicateNameAndExpiry(t *testing.T) {
	ctx := context.Background()
	items := NewStore().Items()
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	juneLate := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, items.Create(ctx, &domain.Item{Name: "Milk", Quantity: 1, ExpiryDate: &june}))
	require.NoError(t, items.Create(ctx, &domain.Item{Name: "Milk", Quantity: 1}))

	err := items.Create(ctx, &domain.Item{Name: "Milk", Quantity: 2, ExpiryDate: &juneLate})
	assert.ErrorIs(t, err, domain.ErrConflict)
	err = items.Create(ctx, &domain.Item{Name: "Milk", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrConflict)

	all, err := items.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddQuantity_RejectsOverflow(t *testing.T) {
	ctx := context.Background()
	items := NewStore().Items()

	item := &domain.Item{Name: "Bolts", Quantity: math.MaxInt - 1}
	require.NoError(t, items.Create(ctx, item))

	assert.ErrorIs(t, items.AddQuantity(ctx, item.ID, 2), domain.ErrValidation)

	got, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt-1, got.Quantity)
}
