package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// newWeeklyAnalysisTask creates the task that analyzes the current week for
// every user. Per-user failures are counted by the sweep, not returned.
func newWeeklyAnalysisTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "weekly_analysis")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting weekly profile sweep...")
		startTime := time.Now()

		stats, err := deps.Sweeper.AnalyzeAllUsers(ctx)
		duration := time.Since(startTime)

		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			log.WarnContext(ctx, "Weekly sweep cancelled", "error", err, "duration", duration)
			return fmt.Errorf("weekly sweep cancelled: %w", err)
		case err != nil:
			log.ErrorContext(ctx, "Weekly sweep failed", "error", err, "duration", duration)
			return fmt.Errorf("weekly sweep failed: %w", err)
		}

		log.InfoContext(ctx, "Weekly profile sweep completed",
			"total_users", stats.TotalUsers,
			"analyzed", stats.Analyzed,
			"skipped", stats.Skipped,
			"errors", stats.Errors,
			"duration", duration)
		return nil
	}
}
