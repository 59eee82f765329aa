// Package reorder places supplier orders for reorder-eligible items.
package reorder

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/pkg/logger"
)

// ReorderPublisher announces placed orders
type ReorderPublisher interface {
	PublishReorderPlaced(ctx context.Context, cycle string, result domain.OrderResult) error
}

// Config holds dispatcher settings
type Config struct {
	// Concurrency bounds the number of supplier calls in flight
	Concurrency int
	// CallTimeout bounds a single supplier call
	CallTimeout time.Duration
	// Cycle is the window within which an item is ordered at most once
	// when an AttemptLedger is configured
	Cycle time.Duration
}

// Dispatcher issues one order per eligible item. Failures are isolated per
// item and never abort the batch. Without an AttemptLedger delivery is
// at-least-once.
type Dispatcher struct {
	client    SupplierClient
	orders    domain.ReorderRepository
	ledger    AttemptLedger
	publisher ReorderPublisher
	metrics   *Metrics
	cfg       Config
	now       func() time.Time
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLedger enables per-cycle deduplication
func WithLedger(l AttemptLedger) Option {
	return func(d *Dispatcher) { d.ledger = l }
}

// WithPublisher announces placed orders
func WithPublisher(p ReorderPublisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithMetrics records outcome metrics
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a new reorder dispatcher
func NewDispatcher(client SupplierClient, orders domain.ReorderRepository, cfg Config, opts ...Option) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if cfg.Cycle <= 0 {
		cfg.Cycle = time.Hour
	}

	d := &Dispatcher{
		client: client,
		orders: orders,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch orders every item and returns one result per item in input order
func (d *Dispatcher) Dispatch(ctx context.Context, items []domain.Item) []domain.OrderResult {
	cycle := d.cycleID()
	results := make([]domain.OrderResult, len(items))

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i := range items {
		i := i
		g.Go(func() error {
			results[i] = d.dispatchOne(ctx, cycle, items[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, cycle string, item domain.Item) domain.OrderResult {
	result := domain.OrderResult{
		ItemID:   item.ID,
		ItemName: item.Name,
		Supplier: item.SupplierName(),
	}
	if item.OrderQuantity != nil {
		result.Quantity = *item.OrderQuantity
	}

	if !policy.IsReorderEligible(item) {
		result.Status = domain.OrderSkipped
		result.Error = "item is not eligible for reorder"
		d.metrics.observe(result.Status, 0)
		return result
	}

	if d.ledger != nil {
		acquired, err := d.ledger.Acquire(ctx, cycle, item.ID)
		switch {
		case err != nil:
			logger.Warn(ctx).Err(err).Uint("item_id", item.ID).Msg("Attempt ledger unavailable, ordering without dedupe")
		case !acquired:
			result.Status = domain.OrderSkipped
			result.Error = "already ordered in this cycle"
			d.metrics.observe(result.Status, 0)
			return result
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	start := time.Now()
	err := d.client.PlaceOrder(callCtx, domain.OrderRequest{
		ItemName: result.ItemName,
		Quantity: result.Quantity,
		Supplier: result.Supplier,
	})
	cancel()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		result.Status = domain.OrderFailed
		result.Error = err.Error()
		if d.ledger != nil {
			if relErr := d.ledger.Release(ctx, cycle, item.ID); relErr != nil {
				logger.Warn(ctx).Err(relErr).Uint("item_id", item.ID).Msg("Failed to release reorder attempt")
			}
		}
		logger.Error(ctx).
			Err(err).
			Uint("item_id", item.ID).
			Str("supplier", result.Supplier).
			Msg("Reorder failed")
	} else {
		result.Status = domain.OrderPlaced
		logger.Info(ctx).
			Uint("item_id", item.ID).
			Str("supplier", result.Supplier).
			Int("quantity", result.Quantity).
			Msg("Reorder placed")
	}
	d.metrics.observe(result.Status, elapsed)

	d.persist(ctx, cycle, result)
	if result.Status == domain.OrderPlaced && d.publisher != nil {
		if err := d.publisher.PublishReorderPlaced(ctx, cycle, result); err != nil {
			logger.Error(ctx).Err(err).Uint("item_id", item.ID).Msg("Failed to publish reorder event")
		}
	}
	return result
}

func (d *Dispatcher) persist(ctx context.Context, cycle string, result domain.OrderResult) {
	if d.orders == nil {
		return
	}
	order := &domain.ReorderOrder{
		ItemID:      result.ItemID,
		ItemName:    result.ItemName,
		Supplier:    result.Supplier,
		Quantity:    result.Quantity,
		Status:      result.Status,
		Error:       result.Error,
		Cycle:       cycle,
		RequestedAt: d.now(),
	}
	if err := d.orders.Save(ctx, order); err != nil {
		logger.Error(ctx).Err(err).Uint("item_id", result.ItemID).Msg("Failed to save reorder outcome")
	}
}

// cycleID names the current dispatch window
func (d *Dispatcher) cycleID() string {
	return d.now().Truncate(d.cfg.Cycle).Format("20060102T150405Z")
}
