package query

import (
	"context"
	"strings"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

// GetItemQuery represents the query to get an item
type GetItemQuery struct {
	ID uint
}

// GetItemHandler handles get item query
type GetItemHandler struct {
	repo domain.ItemRepository
}

// NewGetItemHandler creates a new get item handler
func NewGetItemHandler(repo domain.ItemRepository) *GetItemHandler {
	return &GetItemHandler{repo: repo}
}

// Handle executes the get item query
func (h *GetItemHandler) Handle(ctx context.Context, query GetItemQuery) (*domain.Item, error) {
	if query.ID == 0 {
		return nil, domain.ValidationError("id is required")
	}
	return h.repo.FindByID(ctx, query.ID)
}

// FindByBarcodeQuery represents the query to look an item up by barcode
type FindByBarcodeQuery struct {
	Barcode string
}

// FindByBarcodeHandler handles find by barcode query
type FindByBarcodeHandler struct {
	repo domain.ItemRepository
}

// NewFindByBarcodeHandler creates a new find by barcode handler
func NewFindByBarcodeHandler(repo domain.ItemRepository) *FindByBarcodeHandler {
	return &FindByBarcodeHandler{repo: repo}
}

// Handle executes the find by barcode query
func (h *FindByBarcodeHandler) Handle(ctx context.Context, query FindByBarcodeQuery) (*domain.Item, error) {
	barcode := strings.TrimSpace(query.Barcode)
	if barcode == "" {
		return nil, domain.ValidationError("barcode is required")
	}
	return h.repo.FindByBarcode(ctx, barcode)
}
