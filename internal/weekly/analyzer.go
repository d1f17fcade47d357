package weekly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/6are8/Plan-Smart/internal/cache"
	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/errs"
	"github.com/6are8/Plan-Smart/internal/logger"
)

const (
	// MinEntries is the fewest journal entries a week needs to be analyzed.
	MinEntries = 3
	// DefaultSweepConcurrency is the number of users a sweep analyzes at once.
	DefaultSweepConcurrency = 4
	daysPerWeek             = 7.0
)

// Analysis outcomes reported to the Recorder.
const (
	OutcomeCreated          = "created"
	OutcomeUpdated          = "updated"
	OutcomeExisting         = "existing"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomePersistenceError = "persistence_error"
	OutcomeError            = "error"
)

// Recorder receives analysis and sweep measurements.
type Recorder interface {
	ObserveAnalysis(outcome string, d time.Duration)
	ObserveSweep(stats SweepStats, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveAnalysis(string, time.Duration) {}
func (noopRecorder) ObserveSweep(SweepStats, time.Duration) {}

// Notifier delivers a freshly analyzed profile to its user.
type Notifier interface {
	SendDigest(ctx context.Context, user *database.User, profile *database.WeeklyProfile, summary string) error
}

// FeatureExtractor is the extraction capability the analyzer depends on.
type FeatureExtractor interface {
	Extract(ctx context.Context, mode Mode, entries []*database.JournalEntry, previous *FeatureSet) (FeatureSet, error)
}

// Analyzer orchestrates weekly profile analysis for one user or all users.
type Analyzer struct {
	store       database.Store
	extractor   FeatureExtractor
	cache       cache.Cache
	recorder    Recorder
	notifier    Notifier
	log         *slog.Logger
	now         func() time.Time
	mode        Mode
	concurrency int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache sets the cache for derived per-day values.
func WithCache(c cache.Cache) Option { return func(a *Analyzer) { a.cache = c } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option { return func(a *Analyzer) { a.recorder = r } }

// WithNotifier sets where sweep results are delivered.
func WithNotifier(n Notifier) Option { return func(a *Analyzer) { a.notifier = n } }

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option { return func(a *Analyzer) { a.now = now } }

// WithMode selects the feature variant for new analyses.
func WithMode(m Mode) Option { return func(a *Analyzer) { a.mode = m } }


// WithSweepConcurrency bounds how many users a sweep analyzes at once.
func WithSweepConcurrency(n int) Option { return func(a *Analyzer) { a.concurrency = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *Analyzer) { a.log = l } }

// NewAnalyzer creates an Analyzer. The cache defaults to an in-memory one.
func NewAnalyzer(store database.Store, extractor FeatureExtractor, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:       store,
		extractor:   extractor,
		recorder:    noopRecorder{},
		log:         logger.Discard(),
		now:         time.Now,
		mode:        ModePersona,
		concurrency: DefaultSweepConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = cache.NewMemory(a.now)
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	a.log = a.log.With("component", "weekly_analyzer")
	return a
}

// Confidence is the completeness ratio of a week: count/7 capped at 1.
func Confidence(count int) float64 {
	return math.Min(1.0, float64(count)/daysPerWeek)
}

// AnalyzeUserWeek analyzes one user's week and upserts its profile.
//
// A nil weekStart means the current week; a non-Monday weekStart is moved to
// its Monday. An existing profile is returned unchanged unless force is set.
// Failures are errs.ErrInsufficientData, errs.ErrExtractionFailed or
// errs.ErrPersistence; none of them mutate stored state.
func (a *Analyzer) AnalyzeUserWeek(ctx context.Context, userID string, weekStart *time.Time, force bool) (*database.WeeklyProfile, error) {
	profile, _, err := a.observedAnalysis(ctx, userID, weekStart, force)
	return profile, err
}

func (a *Analyzer) observedAnalysis(ctx context.Context, userID string, weekStart *time.Time, force bool) (*database.WeeklyProfile, string, error) {
	began := time.Now()
	profile, outcome, err := a.analyzeUserWeek(ctx, userID, weekStart, force)
	a.recorder.ObserveAnalysis(outcome, time.Since(began))
	return profile, outcome, err
}

func (a *Analyzer) analyzeUserWeek(ctx context.Context, userID string, weekStart *time.Time, force bool) (*database.WeeklyProfile, string, error) {
	var start time.Time
	if weekStart == nil {
		start, _ = CurrentWeek(a.now)
	} else {
		start = NormalizeWeekStart(*weekStart)
		if !IsMonday(*weekStart) {
			a.log.WarnContext(ctx, "Week start is not a Monday, using the Monday of its week",
				"user_id", userID, "requested", weekStart.Format(database.DateLayout), "week_start", start.Format(database.DateLayout))
		}
	}
	from, to := weekDates(start)
	log := a.log.With("user_id", userID, "week_start", from.String())

	log.InfoContext(ctx, "Analyzing week", "week_end", to.String(), "force", force)

	existing, err := a.store.GetWeeklyProfileForWeek(ctx, userID, from)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("failed to look up profile for week %s: %w", from, err)
	}
	if existing != nil && !force {
		log.InfoContext(ctx, "Profile already exists for week", "profile_id", existing.ID)
		return existing, OutcomeExisting, nil
	}

	entries, err := a.store.ListEntriesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("failed to load entries for week %s: %w", from, err)
	}
	if len(entries) < MinEntries {
		log.WarnContext(ctx, "Too few entries for analysis", "entries", len(entries), "min_entries", MinEntries)
		return nil, OutcomeInsufficientData, errs.NewInsufficientData(len(entries), MinEntries)
	}

	var previous *FeatureSet
	if a.mode == ModePersona {
		previous = a.previousFeatures(ctx, userID, from)
	}

	features, err := a.extractor.Extract(ctx, a.mode, entries, previous)
	if err != nil {
		log.ErrorContext(ctx, "Feature extraction failed", "error", err)
		if !errors.Is(err, errs.ErrExtractionFailed) {
			err = errs.NewExtractionError("feature extraction failed", err)
		}
		return nil, OutcomeExtractionFailed, err
	}

	blob, err := features.Encode()
	if err != nil {
		return nil, OutcomeExtractionFailed, errs.NewExtractionError("extracted features could not be encoded", err)
	}

	profile := &database.WeeklyProfile{
		UserID:               userID,
		WeekStartDate:        from,
		WeekEndDate:          to,
		Features:             blob,
		AnalyzedEntriesCount: len(entries),
		ConfidenceScore:      Confidence(len(entries)),
	}
	if existing != nil {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	}

	if err := a.store.UpsertWeeklyProfile(ctx, profile); err != nil {
		log.ErrorContext(ctx, "Failed to save weekly profile", "error", err)
		if !errors.Is(err, errs.ErrPersistence) {
			err = errs.NewPersistenceError("failed to save weekly profile", err)
		}
		return nil, OutcomePersistenceError, err
	}

	a.evictLatest(ctx, userID)

	outcome := OutcomeCreated
	if existing != nil {
		outcome = OutcomeUpdated
	}
	log.InfoContext(ctx, "Weekly analysis completed", "outcome", outcome, "profile_id", profile.ID,
		"entries", profile.AnalyzedEntriesCount, "confidence", profile.ConfidenceScore)
	return profile, outcome, nil
}

// previousFeatures loads the prior week's features for persona context.
// Missing or unreadable profiles yield nil.
func (a *Analyzer) previousFeatures(ctx context.Context, userID string, weekStart database.Date) *FeatureSet {
	prev, err := a.store.GetWeeklyProfileForWeek(ctx, userID, weekStart.AddDays(-7))
	if err != nil || prev == nil {
		if err != nil {
			a.log.WarnContext(ctx, "Could not load previous week profile", "user_id", userID, "error", err)
		}
		return nil
	}
	fs, err := DecodeFeatures(prev.Features)
	if err != nil {
		a.log.WarnContext(ctx, "Previous week profile has unreadable features", "profile_id", prev.ID, "error", err)
		return nil
	}
	return &fs
}

func (a *Analyzer) latestKey(userID string) string {
	return fmt.Sprintf("profile:latest:%s:%s", userID, a.now().Format(database.DateLayout))
}

func (a *Analyzer) evictLatest(ctx context.Context, userID string) {
	if err := a.cache.Delete(ctx, a.latestKey(userID)); err != nil {
		a.log.WarnContext(ctx, "Failed to evict cached profile", "user_id", userID, "error", err)
	}
}

// LatestFeatures returns the features of the user's most recent profile, or
// nil when the user has none. Results are cached until the end of the day.
func (a *Analyzer) LatestFeatures(ctx context.Context, userID string) (*FeatureSet, error) {
	key := a.latestKey(userID)

	if blob, ok, err := cache.GetJSON[string](ctx, a.cache, key); err != nil {
		a.log.WarnContext(ctx, "Cache read failed, loading profile from store", "user_id", userID, "error", err)
	} else if ok {
		fs, err := DecodeFeatures(blob)
		if err == nil {
			return &fs, nil
		}
		a.log.WarnContext(ctx, "Cached features unreadable", "user_id", userID, "error", err)
	}

	profile, err := a.store.GetLatestWeeklyProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	fs, err := DecodeFeatures(profile.Features)
	if err != nil {
		return nil, fmt.Errorf("latest profile %s has unreadable features: %w", profile.ID, err)
	}

	if err := cache.SetJSON(ctx, a.cache, key, profile.Features, a.now()); err != nil {
		a.log.WarnContext(ctx, "Failed to cache latest features", "user_id", userID, "error", err)
	}
	return &fs, nil
}

// DeleteProfile deletes a profile owned by userID and drops the cached latest
// features. Profiles of other users yield errs.ErrNotFound.
func (a *Analyzer) DeleteProfile(ctx context.Context, userID, profileID string) error {
	if err := a.store.DeleteWeeklyProfile(ctx, userID, profileID); err != nil {
		return err
	}
	a.evictLatest(ctx, userID)
	return nil
}

// Profile returns one profile owned by userID. Missing profiles and profiles
// of other users both yield errs.ErrNotFound.
func (a *Analyzer) Profile(ctx context.Context, userID, profileID string) (*database.WeeklyProfile, error) {
	profile, err := a.store.GetWeeklyProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("weekly profile %s not found", profileID))
	}
	return profile, nil
}

// History returns the user's most recent profiles, newest week first. A limit
// outside 1..database.MaxProfileListLimit falls back to
// database.DefaultProfileListLimit.
func (a *Analyzer) History(ctx context.Context, userID string, limit int) ([]*database.WeeklyProfile, error) {
	profiles, err := a.store.ListWeeklyProfiles(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []*database.WeeklyProfile{}
	}
	return profiles, nil
}
