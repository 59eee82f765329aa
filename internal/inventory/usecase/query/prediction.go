package query

import (
	"context"
	"fmt"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/logger"
)

const unknownTrend = "unknown"

// Predictor produces a demand forecast for an inventory snapshot.
// Failures are *domain.GatewayError.
type Predictor interface {
	Predict(ctx context.Context, snapshot []domain.SnapshotEntry) (string, error)
}

// PredictionQuery requests a forecast. A nil Snapshot is built from the store.
type PredictionQuery struct {
	Snapshot []domain.SnapshotEntry
}

// PredictionHandler handles prediction query
type PredictionHandler struct {
	items     domain.ItemRepository
	sales     domain.SaleRepository
	predictor Predictor
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(items domain.ItemRepository, sales domain.SaleRepository, predictor Predictor) *PredictionHandler {
	return &PredictionHandler{items: items, sales: sales, predictor: predictor}
}

// Handle executes the prediction query. A gateway failure yields an
// unavailable result together with the gateway error.
func (h *PredictionHandler) Handle(ctx context.Context, query PredictionQuery) (*domain.PredictionResult, error) {
	snapshot := query.Snapshot
	if snapshot == nil {
		built, err := h.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = built
	}

	text, err := h.predictor.Predict(ctx, snapshot)
	if err != nil {
		logger.Warn(ctx).Err(err).Int("entries", len(snapshot)).Msg("Prediction unavailable")
		return &domain.PredictionResult{
			Status:   domain.PredictionUnavailable,
			Error:    err.Error(),
			Snapshot: snapshot,
		}, err
	}

	return &domain.PredictionResult{
		Status:     domain.PredictionOK,
		Prediction: text,
		Snapshot:   snapshot,
	}, nil
}

// Snapshot lists every item with its stock and a sales trend from the ledger
func (h *PredictionHandler) Snapshot(ctx context.Context) ([]domain.SnapshotEntry, error) {
	items, err := h.items.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	sold, err := h.sales.TotalSoldByItem(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	snapshot := make([]domain.SnapshotEntry, 0, len(items))
	for _, item := range items {
		trend := unknownTrend
		if n := sold[item.Name]; n > 0 {
			trend = fmt.Sprintf("%d units sold", n)
		}
		snapshot = append(snapshot, domain.SnapshotEntry{
			Name:       item.Name,
			Stock:      item.Quantity,
			SalesTrend: trend,
		})
	}
	return snapshot, nil
}
