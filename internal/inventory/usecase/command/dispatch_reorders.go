package command

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/pkg/logger"
)

// ReorderDispatcher places supplier orders for eligible items
type ReorderDispatcher interface {
	Dispatch(ctx context.Context, items []domain.Item) []domain.OrderResult
}

// DispatchReordersCommand triggers reorders. A zero ItemID evaluates every item.
type DispatchReordersCommand struct {
	ItemID uint
}

// DispatchReordersHandler handles dispatch reorders command
type DispatchReordersHandler struct {
	repo       domain.ItemRepository
	dispatcher ReorderDispatcher
}

// NewDispatchReordersHandler creates a new dispatch reorders handler
func NewDispatchReordersHandler(repo domain.ItemRepository, dispatcher ReorderDispatcher) *DispatchReordersHandler {
	return &DispatchReordersHandler{repo: repo, dispatcher: dispatcher}
}

// Handle evaluates eligibility on a fresh snapshot and dispatches the eligible items
func (h *DispatchReordersHandler) Handle(ctx context.Context, cmd DispatchReordersCommand) ([]domain.OrderResult, error) {
	var items []domain.Item
	if cmd.ItemID != 0 {
		item, err := h.repo.FindByID(ctx, cmd.ItemID)
		if err != nil {
			return nil, err
		}
		items = []domain.Item{*item}
	} else {
		all, err := h.repo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load items: %w", err)
		}
		items = all
	}

	eligible := policy.ReorderEligible(items)
	if len(eligible) == 0 {
		logger.Debug(ctx).Msg("No items eligible for reorder")
		return []domain.OrderResult{}, nil
	}

	results := h.dispatcher.Dispatch(ctx, eligible)

	placed := 0
	for _, r := range results {
		if r.Status == domain.OrderPlaced {
			placed++
		}
	}
	logger.Info(ctx).
		Int("eligible", len(eligible)).
		Int("placed", placed).
		Msg("Reorder dispatch finished")

	return results, nil
}
