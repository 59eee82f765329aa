package command

import (
	"context"

	"github.com/tair/smart-inventory/internal/inventory/policy"
	"github.com/tair/smart-inventory/pkg/logger"
)

// SetThresholdCommand replaces the low-stock warning threshold
type SetThresholdCommand struct {
	Threshold int
}

// SetThresholdHandler handles set threshold command
type SetThresholdHandler struct {
	store *policy.ThresholdStore
}

// NewSetThresholdHandler creates a new set threshold handler
func NewSetThresholdHandler(store *policy.ThresholdStore) *SetThresholdHandler {
	return &SetThresholdHandler{store: store}
}

// Handle executes the set threshold command
func (h *SetThresholdHandler) Handle(ctx context.Context, cmd SetThresholdCommand) error {
	previous := h.store.Get()
	if err := h.store.Set(cmd.Threshold); err != nil {
		return err
	}

	logger.Info(ctx).
		Int("previous", previous).
		Int("threshold", cmd.Threshold).
		Msg("Stock warning threshold updated")
	return nil
}
