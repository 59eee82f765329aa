package command

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/logger"
)

// SetRestockThresholdCommand sets or clears the per-item restock threshold.
// A nil Threshold clears it, which makes the item never reorder-eligible.
type SetRestockThresholdCommand struct {
	ItemID    uint
	Threshold *int
}

// SetRestockThresholdHandler handles set restock threshold command
type SetRestockThresholdHandler struct {
	repo domain.ItemRepository
	tx   domain.TxManager
}

// NewSetRestockThresholdHandler creates a new set restock threshold handler
func NewSetRestockThresholdHandler(repo domain.ItemRepository, tx domain.TxManager) *SetRestockThresholdHandler {
	return &SetRestockThresholdHandler{repo: repo, tx: tx}
}

// Handle executes the set restock threshold command
func (h *SetRestockThresholdHandler) Handle(ctx context.Context, cmd SetRestockThresholdCommand) (*domain.Item, error) {
	if cmd.Threshold != nil && *cmd.Threshold <= 0 {
		return nil, domain.ValidationError("restock_threshold must be positive")
	}

	var item *domain.Item
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := h.repo.FindByID(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		found.RestockThreshold = cmd.Threshold
		if err := h.repo.Update(ctx, found); err != nil {
			return fmt.Errorf("failed to update restock threshold: %w", err)
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := logger.Info(ctx).Uint("item_id", item.ID)
	if cmd.Threshold != nil {
		event = event.Int("restock_threshold", *cmd.Threshold)
	}
	event.Msg("Restock threshold updated")

	return item, nil
}
