package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// TracingItemRepository wraps an ItemRepository with tracing
type TracingItemRepository struct {
	next domain.ItemRepository
}

// NewTracingItemRepository creates a new repository with tracing
func NewTracingItemRepository(next domain.ItemRepository) *TracingItemRepository {
	return &TracingItemRepository{next: next}
}

// Create with tracing
func (r *TracingItemRepository) Create(ctx context.Context, item *domain.Item) error {
	ctx, span := tracer.Start(ctx, "repository.Item.Create",
		trace.WithAttributes(
			attribute.String("item.name", item.Name),
			attribute.Int("item.quantity", item.Quantity),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, item); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("item.id", int(item.ID)))
	return nil
}

// FindByID with tracing
func (r *TracingItemRepository) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.Item.FindByID",
		trace.WithAttributes(attribute.Int("item.id", int(id))),
	)
	defer span.End()

	item, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("item.quantity", item.Quantity))
	return item, nil
}

// FindByBarcode with tracing
func (r *TracingItemRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.Item.FindByBarcode",
		trace.WithAttributes(attribute.String("item.barcode", barcode)),
	)
	defer span.End()

	item, err := r.next.FindByBarcode(ctx, barcode)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("item.id", int(item.ID)))
	return item, nil
}

// FindByName with tracing
func (r *TracingItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.Item.FindByName",
		trace.WithAttributes(attribute.String("item.name", name)),
	)
	defer span.End()

	item, err := r.next.FindByName(ctx, name)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("item.id", int(item.ID)))
	return item, nil
}

// FindByNameAndExpiry with tracing
func (r *TracingItemRepository) FindByNameAndExpiry(ctx context.Context, name string, expiry *time.Time) (*domain.Item, error) {
	attrs := []attribute.KeyValue{attribute.String("item.name", name)}
	if expiry != nil {
		attrs = append(attrs, attribute.String("item.expiry_date", expiry.Format(domain.DateLayout)))
	}
	ctx, span := tracer.Start(ctx, "repository.Item.FindByNameAndExpiry", trace.WithAttributes(attrs...))
	defer span.End()

	item, err := r.next.FindByNameAndExpiry(ctx, name, expiry)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return item, nil
}

// FindAll with tracing
func (r *TracingItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.Item.FindAll")
	defer span.End()

	items, err := r.next.FindAll(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, nil
}

// AddQuantity with tracing
func (r *TracingItemRepository) AddQuantity(ctx context.Context, id uint, amount int) error {
	ctx, span := tracer.Start(ctx, "repository.Item.AddQuantity",
		trace.WithAttributes(
			attribute.Int("item.id", int(id)),
			attribute.Int("quantity.delta", amount),
		),
	)
	defer span.End()

	if err := r.next.AddQuantity(ctx, id, amount); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// DecrementQuantity with tracing
func (r *TracingItemRepository) DecrementQuantity(ctx context.Context, id uint, amount int) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "repository.Item.DecrementQuantity",
		trace.WithAttributes(
			attribute.Int("item.id", int(id)),
			attribute.Int("quantity.delta", -amount),
		),
	)
	defer span.End()

	item, err := r.next.DecrementQuantity(ctx, id, amount)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("quantity.new_value", item.Quantity))
	return item, nil
}

// Update with tracing
func (r *TracingItemRepository) Update(ctx context.Context, item *domain.Item) error {
	ctx, span := tracer.Start(ctx, "repository.Item.Update",
		trace.WithAttributes(
			attribute.Int("item.id", int(item.ID)),
			attribute.String("item.supplier", item.SupplierName()),
		),
	)
	defer span.End()

	if err := r.next.Update(ctx, item); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// Delete with tracing
func (r *TracingItemRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.Item.Delete",
		trace.WithAttributes(attribute.Int("item.id", int(id))),
	)
	defer span.End()

	if err := r.next.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// TracingSaleRepository wraps a SaleRepository with tracing
type TracingSaleRepository struct {
	next domain.SaleRepository
}

// NewTracingSaleRepository creates a new sales ledger with tracing
func NewTracingSaleRepository(next domain.SaleRepository) *TracingSaleRepository {
	return &TracingSaleRepository{next: next}
}

// Record with tracing
func (r *TracingSaleRepository) Record(ctx context.Context, sale *domain.SaleEvent) error {
	ctx, span := tracer.Start(ctx, "repository.Sale.Record",
		trace.WithAttributes(
			attribute.Int("sale.item_id", int(sale.ItemID)),
			attribute.Int("sale.quantity", sale.QuantitySold),
		),
	)
	defer span.End()

	if err := r.next.Record(ctx, sale); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("sale.id", int(sale.ID)))
	return nil
}

// ListByItem with tracing
func (r *TracingSaleRepository) ListByItem(ctx context.Context, itemID uint) ([]domain.SaleEvent, error) {
	ctx, span := tracer.Start(ctx, "repository.Sale.ListByItem",
		trace.WithAttributes(attribute.Int("sale.item_id", int(itemID))),
	)
	defer span.End()

	sales, err := r.next.ListByItem(ctx, itemID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(sales)))
	return sales, nil
}

// TotalSoldByItem with tracing
func (r *TracingSaleRepository) TotalSoldByItem(ctx context.Context) (map[string]int, error) {
	ctx, span := tracer.Start(ctx, "repository.Sale.TotalSoldByItem")
	defer span.End()

	totals, err := r.next.TotalSoldByItem(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(totals)))
	return totals, nil
}

// recordError adds error details to span
func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
