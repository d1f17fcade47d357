package weekly

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/6are8/Plan-Smart/internal/database"
)

// SweepStats counts the outcome of one batch run.
type SweepStats struct {
	TotalUsers int `json:"total_users"`
	Analyzed   int `json:"analyzed"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

type sweepCounter struct {
	mu    sync.Mutex
	stats SweepStats
}

func (c *sweepCounter) add(f func(*SweepStats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}

// AnalyzeAllUsers runs the weekly analysis for every user with enough entries
// in the current week. Users whose profile for the week already exists are
// counted as skipped and get no second digest. Per-user failures are counted
// and logged; they never stop the sweep. The returned error is only set when users cannot be listed.
func (a *Analyzer) AnalyzeAllUsers(ctx context.Context) (SweepStats, error) {
	began := time.Now()
	a.log.InfoContext(ctx, "Starting weekly analysis for all users")

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to list users for weekly sweep", "error", err)
		return SweepStats{}, err
	}

	start, _ := CurrentWeek(a.now)
	from, to := weekDates(start)

	counter := &sweepCounter{stats: SweepStats{TotalUsers: len(users)}}

	// Workers never return errors so one user cannot cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, user := range users {
		if ctx.Err() != nil {
			counter.add(func(s *SweepStats) { s.Errors++ })
			continue
		}
		g.Go(func() error {
			a.sweepUser(gctx, user, from, to, counter)
			return nil
		})
	}
	_ = g.Wait()

	stats := counter.stats
	a.recorder.ObserveSweep(stats, time.Since(began))
	a.log.InfoContext(ctx, "Weekly analysis for all users completed",
		"total_users", stats.TotalUsers, "analyzed", stats.Analyzed,
		"skipped", stats.Skipped, "errors", stats.Errors, "duration", time.Since(began))
	return stats, nil
}

func (a *Analyzer) sweepUser(ctx context.Context, user *database.User, from, to database.Date, counter *sweepCounter) {
	log := a.log.With("user_id", user.ID, "username", user.Username)

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Weekly analysis panicked", "panic", r)
			counter.add(func(s *SweepStats) { s.Errors++ })
		}
	}()

	if ctx.Err() != nil {
		counter.add(func(s *SweepStats) { s.Errors++ })
		return
	}

	count, err := a.store.CountEntriesInRange(ctx, user.ID, from, to)
	if err != nil {
		log.ErrorContext(ctx, "Failed to count entries", "error", err)
		counter.add(func(s *SweepStats) { s.Errors++ })
		return
	}
	if count < MinEntries {
		log.InfoContext(ctx, "Skipping user with too few entries", "entries", count)
		counter.add(func(s *SweepStats) { s.Skipped++ })
		return
	}

	weekStart := from.Time
	profile, outcome, err := a.observedAnalysis(ctx, user.ID, &weekStart, false)
	if err != nil {
		log.WarnContext(ctx, "Weekly analysis failed", "error", err)
		counter.add(func(s *SweepStats) { s.Errors++ })
		return
	}

	// The digest for an existing profile went out with the run that stored it.
	if outcome == OutcomeExisting {
		log.InfoContext(ctx, "Profile already stored for this week, skipping")
		counter.add(func(s *SweepStats) { s.Skipped++ })
		return
	}

	counter.add(func(s *SweepStats) { s.Analyzed++ })
	a.notify(ctx, user, profile)
}

// notify sends the digest best effort.
func (a *Analyzer) notify(ctx context.Context, user *database.User, profile *database.WeeklyProfile) {
	if a.notifier == nil || !user.TelegramChatID.Valid {
		return
	}

	summary := "Kein Profil verfügbar"
	if fs, err := DecodeFeatures(profile.Features); err == nil {
		summary = FormatSummary(&fs)
	}

	if err := a.notifier.SendDigest(ctx, user, profile, summary); err != nil {
		a.log.WarnContext(ctx, "Failed to send weekly digest", "user_id", user.ID, "error", err)
	}
}
