package handlers

import (
	"context"
	"log/slog"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/plan"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

// Profiles reads weekly profile results. *weekly.Analyzer implements it.
type Profiles interface {
	LatestFeatures(ctx context.Context, userID string) (*weekly.FeatureSet, error)
	Stats(ctx context.Context, userID string) (weekly.ProfileStats, error)
	History(ctx context.Context, userID string, limit int) ([]*database.WeeklyProfile, error)
}

// Planner produces daily texts. *plan.Service implements it.
type Planner interface {
	SuggestTomorrow(ctx context.Context, userID string) ([]plan.Suggestion, error)
	EveningPrompt(ctx context.Context, userID string) (string, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Profiles Profiles
	Planner  Planner
}
