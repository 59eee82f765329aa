package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
	"github.com/tair/smart-inventory/internal/inventory/usecase/query"
	"github.com/tair/smart-inventory/internal/report"
	"github.com/tair/smart-inventory/pkg/auth"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(_ context.Context, items []domain.Item) []domain.OrderResult {
	out := make([]domain.OrderResult, len(items))
	for i, it := range items {
		out[i] = domain.OrderResult{ItemID: it.ID, ItemName: it.Name, Status: domain.OrderPlaced}
	}
	return out
}

type noopPredictor struct{}

func (noopPredictor) Predict(context.Context, []domain.SnapshotEntry) (string, error) {
	return "ok", nil
}

func TestInitializeApp_MemoryStores(t *testing.T) {
	store := memory.NewStore()
	app, err := InitializeApp(NewMemoryStores(store), Dependencies{
		Thresholds: policy.NewThresholdStore(policy.DefaultThreshold),
		Dispatcher: noopDispatcher{},
		Predictor:  noopPredictor{},
		Renderer:   report.NewPDFRenderer(),
		Catalogue:  query.DefaultSupplierCatalogue(),
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	require.NotNil(t, app.Handler)
	require.NotNil(t, app.Dispatch)

	ctx := context.Background()
	_, err = command.NewAddItemsHandler(store.Items(), store).Handle(ctx, command.AddItemsCommand{
		Items: []command.NewItem{{Name: "Milk", Quantity: 3}},
	})
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.GenerateToken(1, "clerk", auth.RoleUser)
	require.NoError(t, err)

	router := mux.NewRouter()
	app.Handler.RegisterRoutes(router, auth.RequireAuth(tokens))

	req := httptest.NewRequest("GET", "/api/items", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Milk"))
}
