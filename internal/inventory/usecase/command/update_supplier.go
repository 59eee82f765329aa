package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/logger"
)

// UpdateSupplierCommand sets the supplier and order quantity of an item
type UpdateSupplierCommand struct {
	ItemID        uint
	Supplier      string
	OrderQuantity int
}

// UpdateSupplierHandler handles update supplier command
type UpdateSupplierHandler struct {
	repo domain.ItemRepository
	tx   domain.TxManager
}

// NewUpdateSupplierHandler creates a new update supplier handler
func NewUpdateSupplierHandler(repo domain.ItemRepository, tx domain.TxManager) *UpdateSupplierHandler {
	return &UpdateSupplierHandler{repo: repo, tx: tx}
}

// Handle executes the update supplier command
func (h *UpdateSupplierHandler) Handle(ctx context.Context, cmd UpdateSupplierCommand) (*domain.Item, error) {
	supplier := strings.TrimSpace(cmd.Supplier)
	if supplier == "" {
		return nil, domain.ValidationError("supplier is required")
	}
	if cmd.OrderQuantity <= 0 {
		return nil, domain.ValidationError("order_quantity must be positive")
	}

	var item *domain.Item
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := h.repo.FindByID(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		found.Supplier = &supplier
		found.OrderQuantity = domain.IntPtr(cmd.OrderQuantity)
		if err := h.repo.Update(ctx, found); err != nil {
			return fmt.Errorf("failed to update supplier: %w", err)
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("item_id", item.ID).
		Str("supplier", supplier).
		Int("order_quantity", cmd.OrderQuantity).
		Msg("Supplier policy updated")

	return item, nil
}
