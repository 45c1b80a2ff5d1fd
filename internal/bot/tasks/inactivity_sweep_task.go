package tasks

import (
	"context"
	"fmt"
	"time"
)

// newInactivitySweepTask creates the scheduled task that flags users inactive
// after the configured threshold of silence. A failing tick is reported to
// the scheduler and the next tick runs normally.
func newInactivitySweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "inactivity_sweep")

	return func(ctx context.Context) error {
		log.DebugContext(ctx, "Starting inactivity sweep")
		startTime := time.Now()

		err := deps.Tracker.Sweep(ctx, time.Now().UTC())

		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Inactivity sweep failed", "error", err, "duration", duration)
			return fmt.Errorf("inactivity sweep failed: %w", err)
		}

		log.DebugContext(ctx, "Inactivity sweep completed", "duration", duration)
		return nil
	}
}
