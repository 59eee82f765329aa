package query_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/internal/inventory/usecase/query"
)

func seed(t *testing.T, store *memory.Store, items ...domain.Item) []domain.Item {
	t.Helper()
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		it := it
		require.NoError(t, store.Items().Create(context.Background(), &it))
		out = append(out, it)
	}
	return out
}

func TestLowStock_UsesCurrentThreshold(t *testing.T) {
	store := memory.NewStore()
	seed(t, store,
		domain.Item{Name: "A", Quantity: 3},
		domain.Item{Name: "B", Quantity: 10},
		domain.Item{Name: "C", Quantity: 5},
	)
	thresholds := policy.NewThresholdStore(5)
	h := query.NewLowStockHandler(store.Items(), thresholds)

	got, err := h.Handle(context.Background(), query.LowStockQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Items)
	assert.Equal(t, 5, got.Threshold)

	require.NoError(t, thresholds.Set(11))
	got, err = h.Handle(context.Background(), query.LowStockQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got.Items)
}

func TestReorderCandidates_ExcludesItemsWithoutSupplier(t *testing.T) {
	store := memory.NewStore()
	supplier := "DairyBest"
	seed(t, store,
		domain.Item{Name: "Milk", Quantity: 1, RestockThreshold: domain.IntPtr(5), OrderQuantity: domain.IntPtr(3)},
		domain.Item{Name: "Cheese", Quantity: 1, Supplier: &supplier, RestockThreshold: domain.IntPtr(5), OrderQuantity: domain.IntPtr(3)},
	)

	got, err := query.NewReorderCandidatesHandler(store.Items()).Handle(context.Background(), query.ReorderCandidatesQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cheese", got[0].Name)
}

func TestSalesSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	items := seed(t, store,
		domain.Item{Name: "Milk", Quantity: 4},
		domain.Item{Name: "Milk", Quantity: 6},
		domain.Item{Name: "Bread", Quantity: 2},
	)
	require.NoError(t, store.Sales().Record(ctx, &domain.SaleEvent{ItemID: items[0].ID, QuantitySold: 3}))
	require.NoError(t, store.Sales().Record(ctx, &domain.SaleEvent{ItemID: items[1].ID, QuantitySold: 1}))

	got, err := query.NewSalesSummaryHandler(store.Items(), store.Sales()).Handle(ctx, query.SalesSummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Milk": 4, "Bread": 0}, got.SalesData)
	assert.Equal(t, map[string]int{"Milk": 10, "Bread": 2}, got.InventoryData)
}

type stubPredictor struct {
	text     string
	err      error
	snapshot []domain.SnapshotEntry
}

func (p *stubPredictor) Predict(_ context.Context, snapshot []domain.SnapshotEntry) (string, error) {
	p.snapshot = snapshot
	return p.text, p.err
}

func TestPrediction_BuildsSnapshotFromLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	items := seed(t, store,
		domain.Item{Name: "Milk", Quantity: 4},
		domain.Item{Name: "Bread", Quantity: 2},
	)
	require.NoError(t, store.Sales().Record(ctx, &domain.SaleEvent{ItemID: items[0].ID, QuantitySold: 7}))

	p := &stubPredictor{text: "Order more milk"}
	got, err := query.NewPredictionHandler(store.Items(), store.Sales(), p).Handle(ctx, query.PredictionQuery{})
	require.NoError(t, err)

	assert.Equal(t, domain.PredictionOK, got.Status)
	assert.Equal(t, "Order more milk", got.Prediction)
	assert.Equal(t, []domain.SnapshotEntry{
		{Name: "Milk", Stock: 4, SalesTrend: "7 units sold"},
		{Name: "Bread", Stock: 2, SalesTrend: "unknown"},
	}, p.snapshot)
}

func TestPrediction_GatewayFailureIsData(t *testing.T) {
	store := memory.NewStore()
	gwErr := &domain.GatewayError{Service: "prediction", Cause: errors.New("timeout")}
	p := &stubPredictor{err: gwErr}
	snapshot := []domain.SnapshotEntry{{Name: "Milk", Stock: 1, SalesTrend: "unknown"}}

	got, err := query.NewPredictionHandler(store.Items(), store.Sales(), p).
		Handle(context.Background(), query.PredictionQuery{Snapshot: snapshot})

	assert.ErrorIs(t, err, domain.ErrGateway)
	require.NotNil(t, got)
	assert.Equal(t, domain.PredictionUnavailable, got.Status)
	assert.Contains(t, got.Error, "timeout")
	assert.Equal(t, snapshot, got.Snapshot)
}

type captureRenderer struct {
	names []string
}

func (r *captureRenderer) RenderLowStockReport(names []string) ([]byte, error) {
	r.names = names
	return []byte("%PDF " + strings.Join(names, ",")), nil
}

func TestRestockReport_RendersLowStockNames(t *testing.T) {
	store := memory.NewStore()
	seed(t, store,
		domain.Item{Name: "Milk", Quantity: 1},
		domain.Item{Name: "Bread", Quantity: 9},
		domain.Item{Name: "Apples", Quantity: 0},
	)
	r := &captureRenderer{}

	doc, err := query.NewRestockReportHandler(store.Items(), policy.NewThresholdStore(5), r).
		Handle(context.Background(), query.RestockReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples", "Milk"}, r.names)
	assert.Equal(t, "%PDF Apples,Milk", string(doc))
}

func TestRecommendSupplier(t *testing.T) {
	h := query.NewRecommendSupplierHandler(query.DefaultSupplierCatalogue())
	ctx := context.Background()

	got, err := h.Handle(ctx, query.RecommendSupplierQuery{ProductName: "Milk"})
	require.NoError(t, err)
	assert.Equal(t, "DairyBest", got.Supplier)
	assert.Equal(t, []string{"FreshFarms"}, got.Alternatives)

	got, err = h.Handle(ctx, query.RecommendSupplierQuery{ProductName: "Kettle"})
	require.NoError(t, err)
	assert.Equal(t, query.DefaultSupplier, got.Supplier)

	_, err = h.Handle(ctx, query.RecommendSupplierQuery{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetItemAndBarcodeLookup(t *testing.T) {
	store := memory.NewStore()
	code := "B-7"
	items := seed(t, store, domain.Item{Name: "Laptop", Quantity: 1, Barcode: &code})
	ctx := context.Background()

	got, err := query.NewGetItemHandler(store.Items()).Handle(ctx, query.GetItemQuery{ID: items[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)

	_, err = query.NewGetItemHandler(store.Items()).Handle(ctx, query.GetItemQuery{ID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err = query.NewFindByBarcodeHandler(store.Items()).Handle(ctx, query.FindByBarcodeQuery{Barcode: "B-7"})
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, got.ID)

	_, err = query.NewFindByBarcodeHandler(store.Items()).Handle(ctx, query.FindByBarcodeQuery{Barcode: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
