package reorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/logger"
)

// RunFunc runs one reorder evaluation
type RunFunc func(ctx context.Context) ([]domain.OrderResult, error)

// Scheduler runs a reorder evaluation on a fixed interval. Failed orders stay
// eligible, so each tick retries them.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
}

// NewScheduler creates a new scheduler
func NewScheduler(interval time.Duration, run RunFunc) *Scheduler {
	return &Scheduler{interval: interval, run: run}
}

// Start blocks until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		logger.Logger.Info().Msg("Reorder scheduler disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Logger.Info().Dur("interval", s.interval).Msg("Reorder scheduler started")
	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info().Msg("Reorder scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	runID := uuid.NewString()
	results, err := s.run(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Str("run_id", runID).Msg("Scheduled reorder run failed")
		return
	}

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	logger.Info(ctx).
		Str("run_id", runID).
		Int("placed", counts[domain.OrderPlaced]).
		Int("failed", counts[domain.OrderFailed]).
		Int("skipped", counts[domain.OrderSkipped]).
		Msg("Scheduled reorder run finished")
}
