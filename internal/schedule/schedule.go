// Package schedule wires the -schedule flag: when set, the pool runs
// repeatedly on a cron expression instead of the default single pass.
// The cron wiring is purely additive and never changes the default
// behavior (an empty schedule still exits 0 after one pass).
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// RunFunc executes one full pool pass.
type RunFunc func(ctx context.Context) error

// RunOnSchedule runs fn immediately, then again on every cron tick,
// until ctx is cancelled. An empty expr runs fn exactly once.
func RunOnSchedule(ctx context.Context, expr string, logger arbor.ILogger, fn RunFunc) error {
	if expr == "" {
		return fn(ctx)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if err := fn(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled pool pass failed")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return nil
}
