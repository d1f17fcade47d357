package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/6are8/Plan-Smart/internal/mood"
)

// DateLayout is the text layout of calendar-date columns.
const DateLayout = "2006-01-02"

// Date is a calendar date stored as YYYY-MM-DD text, so range filters
// compare correctly as strings.
type Date struct {
	time.Time
}

// NewDate strips the clock part of t, keeping its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Format(DateLayout), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case time.Time:
		*d = NewDate(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) parse(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// User is the owner of journal entries and weekly profiles.
// Credentials live outside this schema.
type User struct {
	ID             string        `db:"id"`
	Username       string        `db:"username"`
	City           string        `db:"city"`
	SleepGoalHours float64       `db:"sleep_goal_hours"`
	TelegramChatID sql.NullInt64 `db:"telegram_chat_id"`
	CreatedAt      time.Time     `db:"created_at"`
}

// JournalEntry is one user's journal page for one calendar date.
type JournalEntry struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Date      Date      `db:"date"`
	CreatedAt time.Time `db:"created_at"`

	Mood sql.NullString `db:"mood"`

	WhatWentWell  sql.NullString `db:"what_went_well"`
	WhatToImprove sql.NullString `db:"what_to_improve"`
	HowIFeel      sql.NullString `db:"how_i_feel"`

	MorningPlan       sql.NullString `db:"morning_plan"`
	EveningReflection sql.NullString `db:"evening_reflection"`

	AISummary       sql.NullString `db:"ai_summary"`
	EmotionDetected sql.NullString `db:"emotion_detected"`

	SleepDuration sql.NullFloat64 `db:"sleep_duration"`
	Weather       sql.NullString  `db:"weather"`
}

// MoodValue returns the stored mood as a tagged variant.
func (e *JournalEntry) MoodValue() mood.Mood {
	if !e.Mood.Valid {
		return mood.Mood{}
	}
	return mood.Parse(e.Mood.String)
}

// SetMood stores m in the entry. Numeric moods from older clients are stored
// with their categorical label, the same mapping migration 000002 applied to
// existing rows.
func (e *JournalEntry) SetMood(m mood.Mood) {
	if m.IsZero() {
		e.Mood = sql.NullString{}
		return
	}
	e.Mood = sql.NullString{String: mood.Upgrade(m).String(), Valid: true}
}

// WeeklyProfile is the derived profile of one user for one Monday..Sunday week.
// Features holds serialized JSON the store never interprets.
type WeeklyProfile struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	UserID        string `db:"user_id"`
	WeekStartDate Date   `db:"week_start_date"`
	WeekEndDate   Date   `db:"week_end_date"`

	Features             string  `db:"features"`
	AnalyzedEntriesCount int     `db:"analyzed_entries_count"`
	ConfidenceScore      float64 `db:"confidence_score"`
}
