package collector

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner schedules collection passes. Interval <= 0 means run once and
// return; otherwise the run repeats on a fixed ticker until the context
// is cancelled.
type Runner struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// Start runs the given pass immediately, then on every tick. A failed
// pass is logged and the schedule continues.
func (r *Runner) Start(ctx context.Context, run func(context.Context) error) error {
	if err := run(ctx); err != nil {
		if r.Interval <= 0 {
			return err
		}
		r.Logger.Error("collection pass failed", zap.Error(err))
	}

	if r.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := run(ctx); err != nil {
				r.Logger.Error("collection pass failed", zap.Error(err))
			}
		}
	}
}
