package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
)

// openTestDB connects to the database named by DB_DSN or skips the test
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set, skipping postgres integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	require.NoError(t, db.Migrator().DropTable(&domain.SaleEvent{}, &domain.ReorderOrder{}, &domain.Item{}))
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestGormItemRepository_DecrementConcurrent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewGormItemRepository(db)

	item := &domain.Item{Name: "Laptop", Quantity: 3}
	require.NoError(t, repo.Create(ctx, item))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.DecrementQuantity(ctx, item.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 3, ok)

	got, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestGormItemRepository_ConcurrentFirstInsertAccumulates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewGormItemRepository(db)
	add := command.NewAddItemsHandler(repo, NewGormTxManager(db))
	expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		for _, exp := range []*time.Time{&expiry, nil} {
			exp := exp
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := add.Handle(ctx, command.AddItemsCommand{Items: []command.NewItem{
					{Name: "Rice", Quantity: 1, ExpiryDate: exp},
				}})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, item := range all {
		assert.Equal(t, 10, item.Quantity)
	}

	err = repo.Create(ctx, &domain.Item{Name: "Rice", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGormRepositories_TxRollbackAndLedger(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	items := NewGormItemRepository(db)
	sales := NewGormSaleRepository(db)
	txm := NewGormTxManager(db)

	expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	milk := &domain.Item{Name: "Milk", Quantity: 10, ExpiryDate: &expiry}
	require.NoError(t, items.Create(ctx, milk))
	require.NoError(t, items.Create(ctx, &domain.Item{Name: "Bread", Quantity: 4}))

	boom := errors.New("boom")
	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := items.DecrementQuantity(ctx, milk.ID, 2); err != nil {
			return err
		}
		if err := sales.Record(ctx, &domain.SaleEvent{ItemID: milk.ID, QuantitySold: 2}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := items.FindByNameAndExpiry(ctx, "Milk", &expiry)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	require.NoError(t, txm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := items.DecrementQuantity(ctx, milk.ID, 3); err != nil {
			return err
		}
		return sales.Record(ctx, &domain.SaleEvent{ItemID: milk.ID, QuantitySold: 3})
	}))

	totals, err := sales.TotalSoldByItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Milk": 3, "Bread": 0}, totals)
}

func TestGormItemRepository_DuplicateBarcodeIsConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewGormItemRepository(db)
	code := "0042"

	require.NoError(t, repo.Create(ctx, &domain.Item{Name: "Laptop", Barcode: &code}))
	err := repo.Create(ctx, &domain.Item{Name: "Tablet", Barcode: &code})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = repo.FindByBarcode(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTracingItemRepository_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx := context.Background()
	repo := NewTracingItemRepository(memory.NewStore().Items())

	item := &domain.Item{Name: "Milk", Quantity: 1}
	require.NoError(t, repo.Create(ctx, item))
	_, err := repo.DecrementQuantity(ctx, item.ID, 5)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "repository.Item.Create", spans[0].Name())
	assert.Equal(t, "repository.Item.DecrementQuantity", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
