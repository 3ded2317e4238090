// Package jobs runs the pipeline on a fixed interval.
package jobs

import (
	"context"
	"time"

	"leadscout/internal/logging"
	"leadscout/internal/model"
)

// RunFunc executes one pass and returns its stats.
type RunFunc func(ctx context.Context) (model.RunStats, error)

// Loop invokes run immediately and then every interval until ctx is
// canceled. A failed run is logged and the loop keeps going; shutdown
// only happens between runs.
func Loop(ctx context.Context, interval time.Duration, run RunFunc) error {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Error("loop_run_failed", map[string]any{"error": err.Error()})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
