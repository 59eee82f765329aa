package query

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

// SalesSummaryQuery represents the query for sold and on-hand totals per name
type SalesSummaryQuery struct{}

// SalesSummaryHandler handles sales summary query
type SalesSummaryHandler struct {
	items domain.ItemRepository
	sales domain.SaleRepository
}

// NewSalesSummaryHandler creates a new sales summary handler
func NewSalesSummaryHandler(items domain.ItemRepository, sales domain.SaleRepository) *SalesSummaryHandler {
	return &SalesSummaryHandler{items: items, sales: sales}
}

// Handle executes the sales summary query. Rows sharing a name are summed.
func (h *SalesSummaryHandler) Handle(ctx context.Context, _ SalesSummaryQuery) (*domain.SalesSummary, error) {
	sold, err := h.sales.TotalSoldByItem(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	items, err := h.items.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	stock := make(map[string]int, len(items))
	for _, item := range items {
		stock[item.Name] += item.Quantity
		if _, ok := sold[item.Name]; !ok {
			sold[item.Name] = 0
		}
	}

	return &domain.SalesSummary{SalesData: sold, InventoryData: stock}, nil
}
