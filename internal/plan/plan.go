// Package plan consumes weekly profiles: it writes the morning plan, the
// evening reflection prompt, entry summaries and suggestions for tomorrow.
package plan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/6are8/Plan-Smart/internal/cache"
	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/errs"
	"github.com/6are8/Plan-Smart/internal/llm"
	"github.com/6are8/Plan-Smart/internal/logger"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

const (
	recentEntryCount   = 3
	eveningPlanExcerpt = 160
	entryLineRunes     = 120
)

// ProfileSource yields the features of a user's latest weekly profile.
// *weekly.Analyzer implements it.
type ProfileSource interface {
	LatestFeatures(ctx context.Context, userID string) (*weekly.FeatureSet, error)
}

// Service generates the daily texts of a user.
type Service struct {
	store    database.Store
	gen      llm.Generator
	profiles ProfileSource
	cache    cache.Cache
	timeout  time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock sets the clock deciding "today". Its location defines the
// calendar day of plans and of the suggestion cache key.
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }

// NewService creates a Service. profiles and c may be nil; without them
// plans are built without profile context and suggestions are cached in
// process memory.
func NewService(store database.Store, gen llm.Generator, profiles ProfileSource, c cache.Cache, timeout time.Duration, log *slog.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		store:    store,
		gen:      gen,
		profiles: profiles,
		cache:    c,
		timeout:  timeout,
		now:      time.Now,
		log:      log.With("component", "plan_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(s.now)
	}
	return s
}

// MorningInput carries what the user reports in the morning.
type MorningInput struct {
	Weather    string
	SleepHours *float64
}

// MorningPlan generates today's plan for userID and stores it in today's
// journal entry together with sleep and weather. Generation failures are
// returned as ExtractionFailed and leave the entry untouched.
func (s *Service) MorningPlan(ctx context.Context, userID string, in MorningInput) (*database.JournalEntry, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := database.NewDate(s.now())
	recent, err := s.store.ListRecentEntries(ctx, userID, recentEntryCount+1)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent entries: %w", err)
	}

	var past []*database.JournalEntry
	todo := ""
	for _, e := range recent {
		if !e.Date.Before(today.Time) {
			continue
		}
		if e.Date.Equal(today.AddDays(-1).Time) && e.WhatToImprove.Valid {
			todo = strings.TrimSpace(e.WhatToImprove.String)
		}
		if len(past) < recentEntryCount {
			past = append(past, e)
		}
	}

	entry, err := s.store.GetOrCreateEntry(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's entry: %w", err)
	}

	sleep := in.SleepHours
	if sleep == nil && entry.SleepDuration.Valid {
		sleep = &entry.SleepDuration.Float64
	}

	profileLine, notes := s.profileContext(ctx, userID)
	prompt := fmt.Sprintf(morningInstruction,
		user.Username,
		orUnknown(user.City),
		orUnknown(in.Weather),
		describeSleep(sleep),
		describeEntries(past),
		orUnknown(todo),
		profileLine,
		notes,
		user.Username,
	)

	text, err := llm.Call(ctx, s.gen, s.timeout, prompt, morningSystemInstruction)
	if err != nil {
		s.log.WarnContext(ctx, "Morning plan generation failed", "user_id", userID, "error", err)
		return nil, err
	}

	entry.MorningPlan = sql.NullString{String: text, Valid: true}
	if sleep != nil {
		entry.SleepDuration = sql.NullFloat64{Float64: *sleep, Valid: true}
	}
	if in.Weather != "" {
		entry.Weather = sql.NullString{String: in.Weather, Valid: true}
	}
	if err := s.store.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to store morning plan: %w", err)
	}

	s.log.InfoContext(ctx, "Morning plan generated", "user_id", userID, "date", today.String(), "chars", len(text))
	return entry, nil
}

// profileContext renders the latest weekly profile for the morning prompt.
// A failing profile lookup degrades to a plan without profile context.
func (s *Service) profileContext(ctx context.Context, userID string) (string, string) {
	if s.profiles == nil {
		return weekly.FormatSummary(nil), ""
	}
	fs, err := s.profiles.LatestFeatures(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "Latest profile unavailable, planning without it", "user_id", userID, "error", err)
		return weekly.FormatSummary(nil), ""
	}

	notes := ""
	if fs != nil && fs.Persona != nil && len(fs.Persona.CoachingNotes) > 0 {
		lines := make([]string, 0, len(fs.Persona.CoachingNotes))
		for _, n := range fs.Persona.CoachingNotes {
			lines = append(lines, "  - "+n)
		}
		notes = fmt.Sprintf(coachingNotesContext, strings.Join(lines, "\n"))
	}
	return weekly.FormatSummary(fs), notes
}

// EveningPrompt returns the invitation to reflect on today. It always
// returns a text; generation failures fall back to a fixed greeting.
func (s *Service) EveningPrompt(ctx context.Context, userID string) (string, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return "", err
	}

	todayPlan := "Kein Plan für heute."
	entries, err := s.store.ListEntriesInRange(ctx, userID, database.NewDate(s.now()), database.NewDate(s.now()))
	if err != nil {
		s.log.WarnContext(ctx, "Could not load today's entry for evening prompt", "user_id", userID, "error", err)
	} else if len(entries) > 0 && entries[0].MorningPlan.Valid && entries[0].MorningPlan.String != "" {
		todayPlan = clip(entries[0].MorningPlan.String, eveningPlanExcerpt)
	}

	prompt := fmt.Sprintf(eveningInstruction, user.Username, todayPlan)
	fallback := fmt.Sprintf(eveningFallback, user.Username)
	return llm.OrDefault(ctx, s.log, s.gen, s.timeout, prompt, eveningSystemInstruction, fallback), nil
}

// SummarizeEntry writes an AI summary and a detected emotion into entry and
// saves it. The emotion comes from DetectEmotion, so it is stored even when
// the summary cannot be generated; that failure is returned after saving.
func (s *Service) SummarizeEntry(ctx context.Context, entry *database.JournalEntry) (string, error) {
	if entry == nil {
		return "", errs.NewValidationError("entry is required", nil)
	}

	past := strings.TrimSpace(entry.WhatWentWell.String)
	future := strings.TrimSpace(entry.WhatToImprove.String)
	current := strings.TrimSpace(entry.HowIFeel.String)
	if past == "" && future == "" && current == "" {
		return "", errs.NewValidationError("entry has no text to summarize", nil)
	}

	entry.EmotionDetected = sql.NullString{String: DetectEmotion(current + " " + past), Valid: true}

	prompt := fmt.Sprintf(summaryInstruction, orUnknown(past), orUnknown(future), orUnknown(current))
	summary, genErr := llm.Call(ctx, s.gen, s.timeout, prompt, summarySystemInstruction)
	if genErr == nil {
		entry.AISummary = sql.NullString{String: summary, Valid: true}
	} else {
		s.log.WarnContext(ctx, "Entry summary generation failed", "entry_id", entry.ID, "error", genErr)
	}

	if err := s.store.SaveEntry(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to store entry summary: %w", err)
	}
	return summary, genErr
}

func (s *Service) requireUser(ctx context.Context, userID string) (*database.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}
	return user, nil
}

func describeSleep(hours *float64) string {
	if hours == nil {
		return "keine Angabe"
	}
	s := fmt.Sprintf("%.1f Stunden", *hours)
	switch {
	case *hours < 6:
		s += " (wenig Schlaf, plane Pausen und leichte Aufgaben ein)"
	case *hours >= 8:
		s += " (gut erholt, Raum für anspruchsvolle Aufgaben)"
	}
	return s
}

func describeEntries(entries []*database.JournalEntry) string {
	if len(entries) == 0 {
		return "  keine"
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  - %s (%s): Stimmung %s", e.Date.Format("02.01."), weekly.GermanWeekday(e.Date.Time), e.MoodValue().Describe())
		if e.WhatWentWell.Valid && e.WhatWentWell.String != "" {
			b.WriteString("; gut: " + clip(e.WhatWentWell.String, entryLineRunes))
		}
		if e.HowIFeel.Valid && e.HowIFeel.String != "" {
			b.WriteString("; Gefühl: " + clip(e.HowIFeel.String, entryLineRunes))
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "keine Angabe"
	}
	return s
}

func clip(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
