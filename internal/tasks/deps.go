// Package tasks implements the scheduled jobs: the weekly profile sweep,
// daily morning plans, evening prompts and database maintenance.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/plan"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

// ScheduledTaskFunc is the signature of every task. Implementations must
// respect ctx cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Sweeper runs the weekly analysis for all users.
type Sweeper interface {
	AnalyzeAllUsers(ctx context.Context) (weekly.SweepStats, error)
}

// Planner generates the daily texts.
type Planner interface {
	MorningPlan(ctx context.Context, userID string, in plan.MorningInput) (*database.JournalEntry, error)
	EveningPrompt(ctx context.Context, userID string) (string, error)
}

// TextSender delivers a text to a user.
type TextSender interface {
	SendText(ctx context.Context, user *database.User, text string) error
}

// TaskDeps contains all dependencies required by scheduled tasks. Sender is
// nil when no delivery channel is configured.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Sweeper Sweeper
	Planner Planner
	Sender  TextSender
	Now     func() time.Time

	// DBTimeout bounds database maintenance. Zero means no limit.
	DBTimeout time.Duration
}
