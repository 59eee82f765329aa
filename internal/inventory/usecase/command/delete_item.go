package command

import (
	"context"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/logger"
)

// DeleteItemCommand represents the command to delete an item
type DeleteItemCommand struct {
	ID uint
}

// DeleteItemHandler handles delete item command
type DeleteItemHandler struct {
	repo domain.ItemRepository
}

// NewDeleteItemHandler creates a new delete item handler
func NewDeleteItemHandler(repo domain.ItemRepository) *DeleteItemHandler {
	return &DeleteItemHandler{repo: repo}
}

// Handle executes the delete item command. Sales history is kept.
func (h *DeleteItemHandler) Handle(ctx context.Context, cmd DeleteItemCommand) error {
	if cmd.ID == 0 {
		return domain.ValidationError("id is required")
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	logger.Info(ctx).Uint("item_id", cmd.ID).Msg("Item deleted")
	return nil
}
