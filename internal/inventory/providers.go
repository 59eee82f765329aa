package inventory

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/smart-inventory/internal/inventory/delivery/http"
	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/internal/inventory/repository"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
	"github.com/tair/smart-inventory/internal/inventory/usecase/query"
)

// Stores holds the repositories one backend provides
type Stores struct {
	Items    domain.ItemRepository
	Sales    domain.SaleRepository
	Reorders domain.ReorderRepository
	Tx       domain.TxManager
}

// NewGormStores builds traced postgres repositories
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Items:    repository.NewTracingItemRepository(repository.NewGormItemRepository(db)),
		Sales:    repository.NewTracingSaleRepository(repository.NewGormSaleRepository(db)),
		Reorders: repository.NewGormReorderRepository(db),
		Tx:       repository.NewGormTxManager(db),
	}
}

// NewMemoryStores builds repositories over one in-process store
func NewMemoryStores(store *memory.Store) Stores {
	return Stores{
		Items:    store.Items(),
		Sales:    store.Sales(),
		Reorders: store.Reorders(),
		Tx:       store,
	}
}

// Dependencies holds the collaborators built outside the injector
type Dependencies struct {
	Thresholds    *policy.ThresholdStore
	SalePublisher command.SalePublisher
	Dispatcher    command.ReorderDispatcher
	Predictor     query.Predictor
	Renderer      query.ReportRenderer
	Catalogue     query.SupplierCatalogue
	Registerer    prometheus.Registerer
}

// App is the wired inventory application
type App struct {
	Handler  *http.InventoryHandler
	Dispatch *command.DispatchReordersHandler
}

// Wire sets
var StoreSet = wire.NewSet(
	wire.FieldsOf(new(Stores), "Items", "Sales", "Reorders", "Tx"),
)

var DependencySet = wire.NewSet(
	wire.FieldsOf(new(Dependencies), "Thresholds", "SalePublisher", "Dispatcher", "Predictor", "Renderer", "Catalogue", "Registerer"),
)

var CommandHandlerSet = wire.NewSet(
	command.NewAddItemsHandler,
	command.NewDeleteItemHandler,
	command.NewRecordSaleHandler,
	command.NewUpdateSupplierHandler,
	command.NewSetRestockThresholdHandler,
	command.NewSetThresholdHandler,
	command.NewDispatchReordersHandler,
	wire.Struct(new(http.Commands), "*"),
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetItemHandler,
	query.NewFindByBarcodeHandler,
	query.NewListItemsHandler,
	query.NewLowStockHandler,
	query.NewReorderCandidatesHandler,
	query.NewListReordersHandler,
	query.NewSalesSummaryHandler,
	query.NewPredictionHandler,
	query.NewRestockReportHandler,
	query.NewRecommendSupplierHandler,
	wire.Struct(new(http.Queries), "*"),
)

var AllHandlersSet = wire.NewSet(
	StoreSet,
	DependencySet,
	CommandHandlerSet,
	QueryHandlerSet,
	http.NewMetrics,
	http.NewInventoryHandler,
	wire.Struct(new(App), "*"),
)
