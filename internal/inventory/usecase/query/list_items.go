package query

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
)

// ListItemsQuery represents the query to list items
type ListItemsQuery struct{}

// ListItemsHandler handles list items query
type ListItemsHandler struct {
	repo domain.ItemRepository
}

// NewListItemsHandler creates a new list items handler
func NewListItemsHandler(repo domain.ItemRepository) *ListItemsHandler {
	return &ListItemsHandler{repo: repo}
}

// Handle executes the list items query
func (h *ListItemsHandler) Handle(ctx context.Context, _ ListItemsQuery) ([]domain.Item, error) {
	items, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// LowStock is the low-stock view at a given threshold
type LowStock struct {
	Threshold int      `json:"threshold"`
	Items     []string `json:"items"`
}

// LowStockQuery represents the query for items below the warning threshold
type LowStockQuery struct{}

// LowStockHandler handles low stock query
type LowStockHandler struct {
	repo       domain.ItemRepository
	thresholds *policy.ThresholdStore
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(repo domain.ItemRepository, thresholds *policy.ThresholdStore) *LowStockHandler {
	return &LowStockHandler{repo: repo, thresholds: thresholds}
}

// Handle captures the threshold once and evaluates a fresh snapshot against it
func (h *LowStockHandler) Handle(ctx context.Context, _ LowStockQuery) (*LowStock, error) {
	threshold := h.thresholds.Get()
	items, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return &LowStock{
		Threshold: threshold,
		Items:     policy.LowStockItems(items, threshold),
	}, nil
}

// ReorderCandidatesQuery represents the query for reorder-eligible items
type ReorderCandidatesQuery struct{}

// ReorderCandidatesHandler handles reorder candidates query
type ReorderCandidatesHandler struct {
	repo domain.ItemRepository
}

// NewReorderCandidatesHandler creates a new reorder candidates handler
func NewReorderCandidatesHandler(repo domain.ItemRepository) *ReorderCandidatesHandler {
	return &ReorderCandidatesHandler{repo: repo}
}

// Handle executes the reorder candidates query
func (h *ReorderCandidatesHandler) Handle(ctx context.Context, _ ReorderCandidatesQuery) ([]domain.Item, error) {
	items, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return policy.ReorderEligible(items), nil
}

// ListReordersQuery represents the query for recent dispatch outcomes
type ListReordersQuery struct {
	Limit int
}

// ListReordersHandler handles list reorders query
type ListReordersHandler struct {
	repo domain.ReorderRepository
}

// NewListReordersHandler creates a new list reorders handler
func NewListReordersHandler(repo domain.ReorderRepository) *ListReordersHandler {
	return &ListReordersHandler{repo: repo}
}

// Handle executes the list reorders query
func (h *ListReordersHandler) Handle(ctx context.Context, query ListReordersQuery) ([]domain.ReorderOrder, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 500 {
		query.Limit = 500
	}

	orders, err := h.repo.FindRecent(ctx, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reorders: %w", err)
	}
	return orders, nil
}
