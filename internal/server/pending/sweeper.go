package pending

import (
	"context"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/logging"
	"github.com/dmitrijs2005/imagekeeper/internal/server/metrics"
)

// Sweeper removes expired records from a Store on a fixed interval,
// independent of request traffic.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewSweeper(store Store, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger.With("module", "pending_sweeper"),
		now:      time.Now,
	}
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "Starting pending registration sweeper", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping pending registration sweeper")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns the number of removed records.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	n, err := s.store.Sweep(ctx, s.now())
	if err != nil {
		s.logger.Error(ctx, "sweep failed", "error", err)
	}
	if n > 0 {
		metrics.PendingSweptTotal.Add(float64(n))
		s.logger.Debug(ctx, "expired pending registrations removed", "count", n)
	}
	return n
}
