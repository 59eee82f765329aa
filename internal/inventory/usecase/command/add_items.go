package command

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/logger"
)

// NewItem is one entry of an add-items request
type NewItem struct {
	Name             string
	Quantity         int
	ExpiryDate       *time.Time
	Barcode          string
	Supplier         string
	OrderQuantity    *int
	RestockThreshold *int
}

// AddItemsCommand represents the command to add stock for a batch of items
type AddItemsCommand struct {
	Items []NewItem
}

// AddItemsHandler handles add items command
type AddItemsHandler struct {
	repo domain.ItemRepository
	tx   domain.TxManager
}

// NewAddItemsHandler creates a new add items handler
func NewAddItemsHandler(repo domain.ItemRepository, tx domain.TxManager) *AddItemsHandler {
	return &AddItemsHandler{repo: repo, tx: tx}
}

// Handle executes the add items command. Every entry is validated before any
// write; the batch is applied in one transaction. An entry whose (name, expiry)
// already exists adds to that row's quantity instead of creating a new row.
func (h *AddItemsHandler) Handle(ctx context.Context, cmd AddItemsCommand) ([]domain.Item, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ValidationError("at least one item is required")
	}
	for i := range cmd.Items {
		if err := validateNewItem(&cmd.Items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	var result []domain.Item
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		result = make([]domain.Item, 0, len(cmd.Items))
		for _, in := range cmd.Items {
			item, err := h.upsert(ctx, in)
			if err != nil {
				return err
			}
			result = append(result, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Int("items", len(result)).
		Msg("Stock added")

	return result, nil
}

func (h *AddItemsHandler) upsert(ctx context.Context, in NewItem) (*domain.Item, error) {
	barcode := domain.StringPtr(in.Barcode)

	existing, err := h.repo.FindByNameAndExpiry(ctx, in.Name, in.ExpiryDate)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up item: %w", err)
	}
	if existing != nil {
		return h.accumulate(ctx, existing, in, barcode)
	}

	if err := h.checkBarcode(ctx, barcode, nil); err != nil {
		return nil, err
	}

	item := &domain.Item{
		Name:             in.Name,
		Quantity:         in.Quantity,
		ExpiryDate:       in.ExpiryDate,
		Barcode:          barcode,
		Supplier:         domain.StringPtr(in.Supplier),
		OrderQuantity:    in.OrderQuantity,
		RestockThreshold: in.RestockThreshold,
	}
	if err := h.repo.Create(ctx, item); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("failed to create item: %w", err)
		}
		// A concurrent request inserted the same (name, expiry) first.
		winner, ferr := h.repo.FindByNameAndExpiry(ctx, in.Name, in.ExpiryDate)
		if ferr != nil {
			return nil, fmt.Errorf("failed to create item: %w", err)
		}
		return h.accumulate(ctx, winner, in, barcode)
	}

	logger.Debug(ctx).
		Uint("item_id", item.ID).
		Str("name", item.Name).
		Int("quantity", item.Quantity).
		Msg("Item created")
	return item, nil
}

func (h *AddItemsHandler) accumulate(ctx context.Context, existing *domain.Item, in NewItem, barcode *string) (*domain.Item, error) {
	if err := h.checkBarcode(ctx, barcode, existing); err != nil {
		return nil, err
	}
	if existing.Quantity > math.MaxInt-in.Quantity {
		return nil, domain.ValidationError("adding %d to item %d would overflow its quantity of %d",
			in.Quantity, existing.ID, existing.Quantity)
	}

	if err := h.repo.AddQuantity(ctx, existing.ID, in.Quantity); err != nil {
		return nil, fmt.Errorf("failed to add quantity: %w", err)
	}
	existing.Quantity += in.Quantity

	if barcode != nil && existing.Barcode == nil {
		existing.Barcode = barcode
		if err := h.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to assign barcode: %w", err)
		}
	}

	logger.Debug(ctx).
		Uint("item_id", existing.ID).
		Str("name", existing.Name).
		Int("added", in.Quantity).
		Int("quantity", existing.Quantity).
		Msg("Stock accumulated")
	return existing, nil
}

// checkBarcode rejects a barcode owned by another row, or one that differs
// from the barcode already stored on target.
func (h *AddItemsHandler) checkBarcode(ctx context.Context, barcode *string, target *domain.Item) error {
	if barcode == nil {
		return nil
	}
	if target != nil && target.Barcode != nil && *target.Barcode != *barcode {
		return domain.ConflictError("item %d already has barcode %q, got %q", target.ID, *target.Barcode, *barcode)
	}

	owner, err := h.repo.FindByBarcode(ctx, *barcode)
	switch {
	case err == nil && (target == nil || owner.ID != target.ID):
		return domain.ConflictError("barcode %q is already assigned to item %d", *barcode, owner.ID)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to look up barcode: %w", err)
	}
	return nil
}

func validateNewItem(in *NewItem) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.ValidationError("name is required")
	}
	if in.Quantity <= 0 {
		return domain.ValidationError("quantity must be positive")
	}
	if in.OrderQuantity != nil && *in.OrderQuantity <= 0 {
		return domain.ValidationError("order_quantity must be positive")
	}
	if in.RestockThreshold != nil && *in.RestockThreshold <= 0 {
		return domain.ValidationError("restock_threshold must be positive")
	}
	if in.ExpiryDate != nil {
		d := domain.NormalizeDate(*in.ExpiryDate)
		in.ExpiryDate = &d
	}
	return nil
}
