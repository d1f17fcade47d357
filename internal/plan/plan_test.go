package plan

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6are8/Plan-Smart/internal/cache"
	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/errs"
	"github.com/6are8/Plan-Smart/internal/mood"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

// Friday; tomorrow is Samstag.
var testNow = time.Date(2024, 6, 7, 7, 0, 0, 0, time.UTC)

type fakeModel struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (m *fakeModel) Generate(_ context.Context, prompt, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *fakeModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

type staticProfiles struct {
	fs  *weekly.FeatureSet
	err error
}

func (p staticProfiles) LatestFeatures(context.Context, string) (*weekly.FeatureSet, error) {
	return p.fs, p.err
}

type fixture struct {
	store database.Store
	model *fakeModel
	svc   *Service
}

func newFixture(t *testing.T, model *fakeModel, profiles ProfileSource) *fixture {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "plan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	clock := func() time.Time { return testNow }
	svc := NewService(store, model, profiles, cache.NewMemory(clock), time.Second, nil, WithClock(clock))

	return &fixture{store: store, model: model, svc: svc}
}

func (f *fixture) user(t *testing.T, name, city string) *database.User {
	t.Helper()
	u := &database.User{Username: name, City: city}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) entry(t *testing.T, userID, day string, edit func(e *database.JournalEntry)) *database.JournalEntry {
	t.Helper()
	ctx := context.Background()

	d, err := database.ParseDate(day)
	require.NoError(t, err)
	e, err := f.store.GetOrCreateEntry(ctx, userID, d)
	require.NoError(t, err)
	edit(e)
	require.NoError(t, f.store.SaveEntry(ctx, e))
	return e
}

func (f *fixture) today(t *testing.T, userID string) *database.JournalEntry {
	t.Helper()
	d := database.NewDate(testNow)
	entries, err := f.store.ListEntriesInRange(context.Background(), userID, d, d)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestDetectEmotion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", EmotionNeutral},
		{"   ", EmotionNeutral},
		{"Heute war ein Dienstag.", EmotionNeutral},
		{"Ich bin gestresst und müde", EmotionStressed},
		{"Total überfordert, schlechter Tag", EmotionStressed},
		{"Sehr müde und erschöpft", EmotionExhausted},
		{"Ich bin traurig", EmotionSad},
		{"Ängstlich wegen der Prüfung", EmotionNegative},
		{"Glücklich und zufrieden", EmotionHappy},
		{"Viel Freude beim Sport, toll", EmotionHappy},
		{"Motiviert und entspannt", EmotionMotivated},
		{"Super entspannt", EmotionPositive},
		{"Gut geschlafen, aber ein Problem", EmotionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectEmotion(tt.input))
		})
	}
}

func TestMorningPlan(t *testing.T) {
	t.Parallel()

	profiles := staticProfiles{fs: &weekly.FeatureSet{Mode: weekly.ModePersona, Persona: &weekly.Persona{
		Traits:        []string{"ruhig", "strukturiert"},
		CoachingNotes: []string{"Pausen einplanen", "Früher schlafen", "Sport am Morgen"},
		Priority:      "Schlafrhythmus",
	}}}
	f := newFixture(t, &fakeModel{reply: "  Guten Morgen anna! 09:00 Meeting ☀️  "}, profiles)
	u := f.user(t, "anna", "Berlin")

	f.entry(t, u.ID, "2024-06-05", func(e *database.JournalEntry) {
		e.SetMood(mood.Categorical(mood.Happy))
		e.WhatWentWell = text("Lange spazieren gewesen")
	})
	f.entry(t, u.ID, "2024-06-06", func(e *database.JournalEntry) {
		e.WhatToImprove = text("09:00 Meeting vorbereiten")
	})

	sleep := 5.5
	entry, err := f.svc.MorningPlan(context.Background(), u.ID, MorningInput{Weather: "sonnig, 24°C", SleepHours: &sleep})
	require.NoError(t, err)
	assert.Equal(t, "Guten Morgen anna! 09:00 Meeting ☀️", entry.MorningPlan.String)

	prompt := f.model.lastPrompt()
	for _, want := range []string{
		`Beginne mit "Guten Morgen anna"`,
		"Stadt: Berlin",
		"sonnig, 24°C",
		"5.5 Stunden (wenig Schlaf",
		"09:00 Meeting vorbereiten",
		"05.06. (Mittwoch): Stimmung Happy; gut: Lange spazieren gewesen",
		"Eigenschaften: ruhig, strukturiert | Fokus: Schlafrhythmus",
		"  - Früher schlafen",
		"Maximal 170 Wörter",
	} {
		assert.Contains(t, prompt, want)
	}

	stored := f.today(t, u.ID)
	assert.Equal(t, entry.MorningPlan, stored.MorningPlan)
	assert.InDelta(t, 5.5, stored.SleepDuration.Float64, 1e-9)
	assert.Equal(t, "sonnig, 24°C", stored.Weather.String)
}

func TestMorningPlanWithoutProfileOrHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeModel{reply: "Guten Morgen ben"}, staticProfiles{err: errors.New("cache down")})
	u := f.user(t, "ben", "")

	_, err := f.svc.MorningPlan(context.Background(), u.ID, MorningInput{})
	require.NoError(t, err)

	prompt := f.model.lastPrompt()
	assert.Contains(t, prompt, "Wochenprofil: Kein Profil verfügbar")
	assert.Contains(t, prompt, "Schlaf: keine Angabe")
	assert.Contains(t, prompt, "Letzte Einträge:\n  keine")
	assert.NotContains(t, prompt, "Coaching-Hinweise")
}

func TestMorningPlanUsesClockCalendarDay(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CEST", 2*60*60)
	// 23:30 UTC on Friday is already Saturday in Berlin.
	late := time.Date(2024, 6, 7, 23, 30, 0, 0, time.UTC)
	clock := func() time.Time { return late.In(berlin) }

	f := newFixture(t, &fakeModel{reply: "Guten Morgen ben"}, nil)
	svc := NewService(f.store, f.model, nil, nil, time.Second, nil, WithClock(clock))
	u := f.user(t, "ben", "")

	entry, err := svc.MorningPlan(context.Background(), u.ID, MorningInput{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-08", entry.Date.String())
}

func TestMorningPlanFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeModel{err: errors.New("connection refused")}, nil)
	u := f.user(t, "anna", "Köln")

	_, err := f.svc.MorningPlan(context.Background(), u.ID, MorningInput{Weather: "Regen"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrExtractionFailed))
	stored := f.today(t, u.ID)
	assert.False(t, stored.MorningPlan.Valid)
	assert.False(t, stored.Weather.Valid)

	_, err = f.svc.MorningPlan(context.Background(), "missing", MorningInput{})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestEveningPrompt(t *testing.T) {
	t.Parallel()

	t.Run("generated", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: "Wie lief dein Tag, anna? 🌙"}, nil)
		u := f.user(t, "anna", "")
		f.entry(t, u.ID, "2024-06-07", func(e *database.JournalEntry) {
			e.MorningPlan = text(strings.Repeat("p", 200))
		})

		msg, err := f.svc.EveningPrompt(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Wie lief dein Tag, anna? 🌙", msg)

		prompt := f.model.lastPrompt()
		assert.Contains(t, prompt, "für anna zur Tagesreflexion")
		assert.Contains(t, prompt, strings.Repeat("p", eveningPlanExcerpt)+"\n")
		assert.NotContains(t, prompt, strings.Repeat("p", eveningPlanExcerpt+1))
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{err: errors.New("boom")}, nil)
		u := f.user(t, "ben", "")

		msg, err := f.svc.EveningPrompt(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hallo ben! 🌙\n\nWie war dein Tag heute? Zeit für eine kurze Reflexion!", msg)
		assert.Contains(t, f.model.lastPrompt(), "Kein Plan für heute.")
	})
}

func TestSummarizeEntry(t *testing.T) {
	t.Parallel()

	t.Run("stores summary and emotion", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: "Ein ruhiger Tag. Morgen willst du früher starten. 🌱"}, nil)
		u := f.user(t, "anna", "")
		e := f.entry(t, u.ID, "2024-06-07", func(e *database.JournalEntry) {
			e.WhatWentWell = text("Projekt abgeschlossen")
			e.WhatToImprove = text("früher aufstehen")
			e.HowIFeel = text("glücklich und zufrieden")
		})

		summary, err := f.svc.SummarizeEntry(context.Background(), e)
		require.NoError(t, err)
		assert.Equal(t, "Ein ruhiger Tag. Morgen willst du früher starten. 🌱", summary)
		assert.Contains(t, f.model.lastPrompt(), "ZUKUNFT (was ich verbessern will):\nfrüher aufstehen")

		stored := f.today(t, u.ID)
		assert.Equal(t, summary, stored.AISummary.String)
		assert.Equal(t, EmotionHappy, stored.EmotionDetected.String)
	})

	t.Run("keeps emotion when generation fails", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: "   "}, nil)
		u := f.user(t, "ben", "")
		e := f.entry(t, u.ID, "2024-06-07", func(e *database.JournalEntry) {
			e.HowIFeel = text("müde und erschöpft")
		})

		_, err := f.svc.SummarizeEntry(context.Background(), e)
		assert.True(t, errors.Is(err, errs.ErrExtractionFailed))

		stored := f.today(t, u.ID)
		assert.False(t, stored.AISummary.Valid)
		assert.Equal(t, EmotionExhausted, stored.EmotionDetected.String)
	})

	t.Run("rejects empty entries", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: "x"}, nil)
		_, err := f.svc.SummarizeEntry(context.Background(), &database.JournalEntry{})
		assert.True(t, errors.Is(err, errs.ErrValidation))
		_, err = f.svc.SummarizeEntry(context.Background(), nil)
		assert.True(t, errors.Is(err, errs.ErrValidation))
		assert.Zero(t, f.model.calls())
	})
}

func TestSuggestTomorrow(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ä", 70)
	reply := `Gern! Hier meine Vorschläge: ["Wochenplanung", "", 42, "` + long + `", "Sport", "Einkaufen", "Lesen", "Yoga"] Viel Erfolg!`
	f := newFixture(t, &fakeModel{reply: reply}, nil)
	u := f.user(t, "anna", "")

	f.entry(t, u.ID, "2024-05-10", func(e *database.JournalEntry) { e.WhatToImprove = text("zu alt") })
	f.entry(t, u.ID, "2024-06-01", func(e *database.JournalEntry) { e.WhatToImprove = text("Wochenplanung machen") })
	f.entry(t, u.ID, "2024-06-03", func(e *database.JournalEntry) { e.WhatWentWell = text("nur Rückblick") })
	f.entry(t, u.ID, "2024-06-06", func(e *database.JournalEntry) { e.WhatToImprove = text("Sport") })

	got, err := f.svc.SuggestTomorrow(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, got, maxSuggestions)

	assert.Equal(t, "Wochenplanung", got[0].Text)
	assert.Equal(t, maxSuggestionRunes, utf8.RuneCountInString(got[1].Text))
	assert.Equal(t, []string{"Sport", "Einkaufen", "Lesen"}, []string{got[2].Text, got[3].Text, got[4].Text})
	for _, s := range got {
		assert.Equal(t, SuggestionTypeAI, s.Type)
		assert.Equal(t, "Samstag", s.Day)
	}

	prompt := f.model.lastPrompt()
	assert.Contains(t, prompt, "- Samstag (01.06.): Wochenplanung machen")
	assert.Contains(t, prompt, "- Donnerstag (06.06.): Sport")
	assert.Contains(t, prompt, "Morgen ist Samstag.")
	assert.NotContains(t, prompt, "zu alt")
	assert.NotContains(t, prompt, "Montag (03.06.)")

	again, err := f.svc.SuggestTomorrow(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, f.model.calls(), "second call is served from cache")
}

func TestSuggestTomorrowEmpty(t *testing.T) {
	t.Parallel()

	t.Run("too little history", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: `["x"]`}, nil)
		u := f.user(t, "anna", "")
		f.entry(t, u.ID, "2024-06-05", func(e *database.JournalEntry) { e.WhatToImprove = text("a") })
		f.entry(t, u.ID, "2024-06-06", func(e *database.JournalEntry) { e.WhatToImprove = text("b") })

		got, err := f.svc.SuggestTomorrow(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, f.model.calls())
	})

	t.Run("no plans in history", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: `["x"]`}, nil)
		u := f.user(t, "anna", "")
		for _, day := range []string{"2024-06-04", "2024-06-05", "2024-06-06"} {
			f.entry(t, u.ID, day, func(e *database.JournalEntry) { e.HowIFeel = text("ok") })
		}

		got, err := f.svc.SuggestTomorrow(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, f.model.calls())
	})

	t.Run("unusable reply is not cached", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeModel{reply: "Ich sehe kein Muster."}, nil)
		u := f.user(t, "anna", "")
		for _, day := range []string{"2024-06-04", "2024-06-05", "2024-06-06"} {
			f.entry(t, u.ID, day, func(e *database.JournalEntry) { e.WhatToImprove = text("Sport") })
		}

		for i := 0; i < 2; i++ {
			got, err := f.svc.SuggestTomorrow(context.Background(), u.ID)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		}
		assert.Equal(t, 2, f.model.calls())
	})
}
