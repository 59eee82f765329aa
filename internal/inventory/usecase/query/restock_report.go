package query

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
)

// ReportRenderer renders the low-stock name list as a document
type ReportRenderer interface {
	RenderLowStockReport(names []string) ([]byte, error)
}

// RestockReportQuery represents the query for the restock document
type RestockReportQuery struct{}

// RestockReportHandler handles restock report query
type RestockReportHandler struct {
	repo       domain.ItemRepository
	thresholds *policy.ThresholdStore
	renderer   ReportRenderer
}

// NewRestockReportHandler creates a new restock report handler
func NewRestockReportHandler(repo domain.ItemRepository, thresholds *policy.ThresholdStore, renderer ReportRenderer) *RestockReportHandler {
	return &RestockReportHandler{repo: repo, thresholds: thresholds, renderer: renderer}
}

// Handle renders the items below the current warning threshold
func (h *RestockReportHandler) Handle(ctx context.Context, _ RestockReportQuery) ([]byte, error) {
	items, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	names := policy.LowStockItems(items, h.thresholds.Get())
	doc, err := h.renderer.RenderLowStockReport(names)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return doc, nil
}
