package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/pkg/logger"
)

// SaleRecorded is published after a sale commits
type SaleRecorded struct {
	SaleID          uint
	ItemID          uint
	ItemName        string
	QuantitySold    int
	Remaining       int
	ReorderEligible bool
	SoldAt          time.Time
}

// SalePublisher publishes committed sales
type SalePublisher interface {
	PublishSaleRecorded(ctx context.Context, event SaleRecorded) error
}

// RecordSaleCommand represents the command to record a sale
type RecordSaleCommand struct {
	Ref      domain.SaleRef
	Quantity int
}

// RecordSaleHandler handles record sale command
type RecordSaleHandler struct {
	items     domain.ItemRepository
	sales     domain.SaleRepository
	tx        domain.TxManager
	publisher SalePublisher
}

// NewRecordSaleHandler creates a new record sale handler. publisher may be nil.
func NewRecordSaleHandler(items domain.ItemRepository, sales domain.SaleRepository, tx domain.TxManager, publisher SalePublisher) *RecordSaleHandler {
	return &RecordSaleHandler{items: items, sales: sales, tx: tx, publisher: publisher}
}

// Handle executes the record sale command. The stock decrement and the ledger
// entry commit together. When stock is short the returned result is declined
// and err is an *domain.InsufficientStockError.
func (h *RecordSaleHandler) Handle(ctx context.Context, cmd RecordSaleCommand) (*domain.SaleResult, error) {
	if cmd.Quantity <= 0 {
		return nil, domain.ValidationError("quantity must be positive")
	}

	itemID, err := h.resolve(ctx, cmd.Ref)
	if err != nil {
		return nil, err
	}

	var (
		item *domain.Item
		sale *domain.SaleEvent
	)
	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := h.items.DecrementQuantity(ctx, itemID, cmd.Quantity)
		if err != nil {
			return err
		}
		event := &domain.SaleEvent{
			ItemID:       itemID,
			QuantitySold: cmd.Quantity,
			SaleDate:     time.Now().UTC(),
		}
		if err := h.sales.Record(ctx, event); err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		item, sale = updated, event
		return nil
	})

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		logger.Warn(ctx).
			Uint("item_id", itemID).
			Int("requested", stockErr.Requested).
			Int("available", stockErr.Available).
			Msg("Sale declined")
		return &domain.SaleResult{
			Status:    domain.SaleDeclined,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		}, err
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("item_id", item.ID).
		Int("quantity", cmd.Quantity).
		Int("remaining", item.Quantity).
		Msg("Sale recorded")

	h.publish(ctx, item, sale)

	return &domain.SaleResult{
		Status:    domain.SaleCompleted,
		Item:      item,
		Sale:      sale,
		Requested: cmd.Quantity,
		Available: item.Quantity,
	}, nil
}

// resolve maps the sale reference to an item id. A missing id is left to the
// decrement, which declines it; unknown barcodes and names are not found.
func (h *RecordSaleHandler) resolve(ctx context.Context, ref domain.SaleRef) (uint, error) {
	barcode := strings.TrimSpace(ref.Barcode)
	name := strings.TrimSpace(ref.Name)

	set := 0
	for _, present := range []bool{ref.ItemID != 0, barcode != "", name != ""} {
		if present {
			set++
		}
	}
	if set != 1 {
		return 0, domain.ValidationError("exactly one of item_id, barcode or name is required")
	}

	switch {
	case ref.ItemID != 0:
		return ref.ItemID, nil
	case barcode != "":
		item, err := h.items.FindByBarcode(ctx, barcode)
		if err != nil {
			return 0, err
		}
		return item.ID, nil
	default:
		item, err := h.items.FindByName(ctx, name)
		if err != nil {
			return 0, err
		}
		return item.ID, nil
	}
}

func (h *RecordSaleHandler) publish(ctx context.Context, item *domain.Item, sale *domain.SaleEvent) {
	if h.publisher == nil {
		return
	}
	event := SaleRecorded{
		SaleID:          sale.ID,
		ItemID:          item.ID,
		ItemName:        item.Name,
		QuantitySold:    sale.QuantitySold,
		Remaining:       item.Quantity,
		ReorderEligible: policy.IsReorderEligible(*item),
		SoldAt:          sale.SaleDate,
	}
	if err := h.publisher.PublishSaleRecorded(ctx, event); err != nil {
		logger.Error(ctx).
			Err(err).
			Uint("item_id", item.ID).
			Msg("Failed to publish sale event")
	}
}
