package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6are8/Plan-Smart/internal/errs"
	"github.com/6are8/Plan-Smart/internal/mood"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, nil)
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func createUser(t *testing.T, store Store, name string) *User {
	t.Helper()
	u := &User{Username: name}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestDateRoundTrip(t *testing.T) {
	t.Parallel()

	d := mustDate(t, "2024-06-03")
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", v)

	var scanned Date
	require.NoError(t, scanned.Scan("2024-06-03T00:00:00Z"))
	assert.Equal(t, d, scanned)
	assert.Equal(t, "2024-06-09", d.AddDays(6).String())

	assert.Error(t, scanned.Scan(42))
}

func TestEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	user := createUser(t, store, "anna")

	first, err := store.GetOrCreateEntry(ctx, user.ID, mustDate(t, "2024-06-05"))
	require.NoError(t, err)
	again, err := store.GetOrCreateEntry(ctx, user.ID, mustDate(t, "2024-06-05"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "one entry per user and date")

	first.SetMood(mood.Categorical(mood.Tired))
	first.WhatToImprove = sql.NullString{String: "früher schlafen", Valid: true}
	require.NoError(t, store.SaveEntry(ctx, first))

	for _, day := range []string{"2024-06-03", "2024-06-09", "2024-06-10"} {
		_, err := store.GetOrCreateEntry(ctx, user.ID, mustDate(t, day))
		require.NoError(t, err)
	}

	entries, err := store.ListEntriesInRange(ctx, user.ID, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-09"))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-06-03", entries[0].Date.String())
	assert.Equal(t, "2024-06-05", entries[1].Date.String())
	assert.Equal(t, "2024-06-09", entries[2].Date.String())
	assert.Equal(t, mood.Categorical(mood.Tired), entries[1].MoodValue())
	assert.Equal(t, "früher schlafen", entries[1].WhatToImprove.String)

	count, err := store.CountEntriesInRange(ctx, user.ID, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-09"))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	recent, err := store.ListRecentEntries(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-06-10", recent[0].Date.String())

	err = store.SaveEntry(ctx, &JournalEntry{ID: "missing", UserID: user.ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSetMoodStoresLegacyNumbersAsLabels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	user := createUser(t, store, "bruno")

	tests := []struct {
		day  string
		in   mood.Mood
		want mood.Mood
	}{
		{day: "2024-06-03", in: mood.Numeric(5), want: mood.Categorical(mood.Happy)},
		{day: "2024-06-04", in: mood.Numeric(2), want: mood.Categorical(mood.Tired)},
		{day: "2024-06-05", in: mood.Categorical(mood.Focused), want: mood.Categorical(mood.Focused)},
		{day: "2024-06-06", in: mood.Mood{}, want: mood.Mood{}},
	}

	for _, tt := range tests {
		entry, err := store.GetOrCreateEntry(ctx, user.ID, mustDate(t, tt.day))
		require.NoError(t, err)
		entry.SetMood(tt.in)
		require.NoError(t, store.SaveEntry(ctx, entry))
	}

	entries, err := store.ListEntriesInRange(ctx, user.ID, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-09"))
	require.NoError(t, err)
	require.Len(t, entries, len(tests))
	for i, tt := range tests {
		assert.Equal(t, tt.want, entries[i].MoodValue(), tt.day)
	}
}

func TestUpsertWeeklyProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	user := createUser(t, store, "ben")
	start := mustDate(t, "2024-06-03")

	p := &WeeklyProfile{
		UserID:               user.ID,
		WeekStartDate:        start,
		WeekEndDate:          start.AddDays(6),
		Features:             `{"a":1}`,
		AnalyzedEntriesCount: 3,
		ConfidenceScore:      3.0 / 7.0,
	}
	require.NoError(t, store.UpsertWeeklyProfile(ctx, p))
	firstID := p.ID
	require.NotEmpty(t, firstID)

	again := &WeeklyProfile{
		UserID:               user.ID,
		WeekStartDate:        start,
		WeekEndDate:          start.AddDays(6),
		Features:             `{"a":2}`,
		AnalyzedEntriesCount: 5,
		ConfidenceScore:      5.0 / 7.0,
	}
	require.NoError(t, store.UpsertWeeklyProfile(ctx, again))
	assert.Equal(t, firstID, again.ID, "upsert keeps the original row")

	stored, err := store.GetWeeklyProfileForWeek(ctx, user.ID, start)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, `{"a":2}`, stored.Features)
	assert.Equal(t, 5, stored.AnalyzedEntriesCount)
	assert.InDelta(t, 5.0/7.0, stored.ConfidenceScore, 1e-9)
	assert.Equal(t, "2024-06-09", stored.WeekEndDate.String())

	profiles, err := store.ListWeeklyProfiles(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	err = store.UpsertWeeklyProfile(ctx, &WeeklyProfile{UserID: user.ID})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestLatestAndListOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	user := createUser(t, store, "cleo")

	none, err := store.GetLatestWeeklyProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	for _, week := range []string{"2024-05-27", "2024-06-10", "2024-06-03"} {
		start := mustDate(t, week)
		require.NoError(t, store.UpsertWeeklyProfile(ctx, &WeeklyProfile{
			UserID:        user.ID,
			WeekStartDate: start,
			WeekEndDate:   start.AddDays(6),
			Features:      "{}",
		}))
	}

	latest, err := store.GetLatestWeeklyProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-06-16", latest.WeekEndDate.String())

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 2, want: 2},
		{limit: 0, want: 3},
		{limit: 51, want: 3},
		{limit: -1, want: 3},
	}
	for _, tt := range tests {
		profiles, err := store.ListWeeklyProfiles(ctx, user.ID, tt.limit)
		require.NoError(t, err)
		assert.Len(t, profiles, tt.want, "limit %d", tt.limit)
		assert.Equal(t, "2024-06-10", profiles[0].WeekStartDate.String())
	}
}

func TestDeleteWeeklyProfileOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	owner := createUser(t, store, "dana")
	other := createUser(t, store, "emil")
	start := mustDate(t, "2024-06-03")

	p := &WeeklyProfile{UserID: owner.ID, WeekStartDate: start, WeekEndDate: start.AddDays(6), Features: "{}"}
	require.NoError(t, store.UpsertWeeklyProfile(ctx, p))

	got, err := store.GetWeeklyProfile(ctx, other.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "profiles are not visible to other users")

	err = store.DeleteWeeklyProfile(ctx, other.ID, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	stillThere, err := store.GetWeeklyProfile(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stillThere)

	require.NoError(t, store.DeleteWeeklyProfile(ctx, owner.ID, p.ID))
	err = store.DeleteWeeklyProfile(ctx, owner.ID, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	missing, err := store.GetUser(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	u := &User{Username: "fritz", City: "Berlin", TelegramChatID: sql.NullInt64{Int64: 42, Valid: true}}
	require.NoError(t, store.CreateUser(ctx, u))
	createUser(t, store, "greta")

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Berlin", got.City)
	assert.InDelta(t, 8.0, got.SleepGoalHours, 1e-9)
	assert.Equal(t, int64(42), got.TelegramChatID.Int64)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	assert.ErrorIs(t, store.CreateUser(ctx, &User{}), errs.ErrValidation)
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.RunSQLMaintenance(ctx))
}

func TestTelegramChatLinking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	fritz := createUser(t, store, "fritz")
	greta := createUser(t, store, "greta")

	none, err := store.GetUserByTelegramChatID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, store.LinkTelegramChat(ctx, fritz.ID, 42))
	got, err := store.GetUserByTelegramChatID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fritz.ID, got.ID)

	assert.ErrorIs(t, store.LinkTelegramChat(ctx, greta.ID, 42), errs.ErrPersistence, "chat already linked")
	assert.ErrorIs(t, store.LinkTelegramChat(ctx, "missing", 7), errs.ErrNotFound)
	assert.ErrorIs(t, store.LinkTelegramChat(ctx, greta.ID, 0), errs.ErrValidation)
}
