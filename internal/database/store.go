package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/6are8/Plan-Smart/internal/errs"
)

// Profile history page bounds.
const (
	DefaultProfileListLimit = 10
	MaxProfileListLimit     = 50
)

// Store defines the interface for database operations.
// Methods should accept context.Context for cancellation and timeouts.
// Lookups of a single row return nil, nil when the row does not exist.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error

	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	// GetUserByTelegramChatID resolves a linked Telegram chat to its user.
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*User, error)
	// LinkTelegramChat binds a Telegram chat to the user. A chat links to at most one user.
	LinkTelegramChat(ctx context.Context, userID string, chatID int64) error

	// GetOrCreateEntry returns the user's entry for date, creating an empty one if needed.
	GetOrCreateEntry(ctx context.Context, userID string, date Date) (*JournalEntry, error)
	// SaveEntry updates the mutable fields of an existing entry.
	SaveEntry(ctx context.Context, entry *JournalEntry) error
	// ListEntriesInRange returns entries with from <= date <= to, ordered by date ascending.
	ListEntriesInRange(ctx context.Context, userID string, from, to Date) ([]*JournalEntry, error)
	CountEntriesInRange(ctx context.Context, userID string, from, to Date) (int, error)
	// ListRecentEntries returns the newest entries first.
	ListRecentEntries(ctx context.Context, userID string, limit int) ([]*JournalEntry, error)

	GetWeeklyProfileForWeek(ctx context.Context, userID string, weekStart Date) (*WeeklyProfile, error)
	// GetLatestWeeklyProfile returns the profile with the latest week_end_date.
	GetLatestWeeklyProfile(ctx context.Context, userID string) (*WeeklyProfile, error)
	// GetWeeklyProfile returns a profile only if it belongs to userID.
	GetWeeklyProfile(ctx context.Context, userID, profileID string) (*WeeklyProfile, error)
	ListWeeklyProfiles(ctx context.Context, userID string, limit int) ([]*WeeklyProfile, error)
	// ListAllWeeklyProfiles returns every profile of the user, newest week first.
	ListAllWeeklyProfiles(ctx context.Context, userID string) ([]*WeeklyProfile, error)
	// UpsertWeeklyProfile inserts or updates the row keyed by (user_id, week_start_date).
	// On return profile holds the persisted id and timestamps.
	UpsertWeeklyProfile(ctx context.Context, profile *WeeklyProfile) error
	// DeleteWeeklyProfile deletes a profile owned by userID. Foreign or missing
	// profiles yield errs.ErrNotFound.
	DeleteWeeklyProfile(ctx context.Context, userID, profileID string) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

// --- Users ---

func (s *sqlxStore) CreateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errs.NewValidationError("cannot save nil user", nil)
	}
	if user.Username == "" {
		return errs.NewValidationError("user must have a username", nil)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.SleepGoalHours == 0 {
		user.SleepGoalHours = 8
	}
	user.CreatedAt = s.now()

	query := `
        INSERT INTO users (id, username, city, sleep_goal_hours, telegram_chat_id, created_at)
        VALUES (:id, :username, :city, :sleep_goal_hours, :telegram_chat_id, :created_at);
    `
	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		s.logger.ErrorContext(ctx, "Error creating user", "username", user.Username, "error", err)
		return errs.NewPersistenceError(fmt.Sprintf("failed to create user %q", user.Username), err)
	}

	s.logger.DebugContext(ctx, "User created", "user_id", user.ID)
	return nil
}

func (s *sqlxStore) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, errs.NewValidationError("user_id cannot be empty", nil)
	}

	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, username, city, sleep_goal_hours, telegram_chat_id, created_at FROM users WHERE id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user found", "user_id", userID)
		return nil, nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	return &user, nil
}

func (s *sqlxStore) ListUsers(ctx context.Context) ([]*User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var users []*User
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, username, city, sleep_goal_hours, telegram_chat_id, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched users", "count", len(users))
	return users, nil
}

func (s *sqlxStore) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, username, city, sleep_goal_hours, telegram_chat_id, created_at FROM users WHERE telegram_chat_id = ?`, chatID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user by chat", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get user for chat %d: %w", chatID, err)
	}
	return &user, nil
}

func (s *sqlxStore) LinkTelegramChat(ctx context.Context, userID string, chatID int64) error {
	if userID == "" {
		return errs.NewValidationError("user_id cannot be empty", nil)
	}
	if chatID == 0 {
		return errs.NewValidationError("chat id cannot be zero", nil)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE users SET telegram_chat_id = ? WHERE id = ?`, chatID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error linking Telegram chat", "user_id", userID, "chat_id", chatID, "error", err)
		return errs.NewPersistenceError(fmt.Sprintf("failed to link chat %d", chatID), err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}

	s.logger.InfoContext(ctx, "Telegram chat linked", "user_id", userID, "chat_id", chatID)
	return nil
}

// --- Journal entries ---

const entryColumns = `id, user_id, date, mood, what_went_well, what_to_improve, how_i_feel,
        morning_plan, evening_reflection, ai_summary, emotion_detected, sleep_duration, weather, created_at`

func (s *sqlxStore) GetOrCreateEntry(ctx context.Context, userID string, date Date) (*JournalEntry, error) {
	if userID == "" {
		return nil, errs.NewValidationError("user_id cannot be empty", nil)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errs.NewPersistenceError("failed to begin transaction", err)
	}
	defer s.rollback(ctx, &tx)

	var entry JournalEntry
	err = tx.GetContext(ctx, &entry,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id = ? AND date = ?`, userID, date)
	if err == nil {
		return &entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error looking up journal entry", "user_id", userID, "date", date, "error", err)
		return nil, fmt.Errorf("failed to get journal entry for %s: %w", date, err)
	}

	entry = JournalEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		CreatedAt: s.now(),
	}
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO journal_entries (id, user_id, date, created_at)
        VALUES (:id, :user_id, :date, :created_at);
    `, &entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating journal entry", "user_id", userID, "date", date, "error", err)
		return nil, errs.NewPersistenceError(fmt.Sprintf("failed to create journal entry for %s", date), err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.NewPersistenceError("failed to commit transaction", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Journal entry created", "user_id", userID, "date", date, "entry_id", entry.ID)
	return &entry, nil
}

func (s *sqlxStore) SaveEntry(ctx context.Context, entry *JournalEntry) error {
	if entry == nil || entry.ID == "" {
		return errs.NewValidationError("cannot save entry without id", nil)
	}

	result, err := s.db.NamedExecContext(ctx, `
        UPDATE journal_entries SET
            mood = :mood,
            what_went_well = :what_went_well,
            what_to_improve = :what_to_improve,
            how_i_feel = :how_i_feel,
            morning_plan = :morning_plan,
            evening_reflection = :evening_reflection,
            ai_summary = :ai_summary,
            emotion_detected = :emotion_detected,
            sleep_duration = :sleep_duration,
            weather = :weather
        WHERE id = :id AND user_id = :user_id
    `, entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving journal entry", "entry_id", entry.ID, "error", err)
		return errs.NewPersistenceError("failed to save journal entry", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errs.NewNotFoundError("journal entry not found")
	}
	return nil
}

func (s *sqlxStore) ListEntriesInRange(ctx context.Context, userID string, from, to Date) ([]*JournalEntry, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var entries []*JournalEntry
	err := s.db.SelectContext(ctx, &entries, `
        SELECT `+entryColumns+`
        FROM journal_entries
        WHERE user_id = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, userID, from, to)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching entries", "user_id", userID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing journal entries", "user_id", userID, "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to list entries for user %s: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Fetched journal entries", "user_id", userID, "from", from, "to", to, "count", len(entries))
	return entries, nil
}

func (s *sqlxStore) CountEntriesInRange(ctx context.Context, userID string, from, to Date) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM journal_entries WHERE user_id = ? AND date >= ? AND date <= ?`, userID, from, to)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting journal entries", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to count entries for user %s: %w", userID, err)
	}
	return count, nil
}

func (s *sqlxStore) ListRecentEntries(ctx context.Context, userID string, limit int) ([]*JournalEntry, error) {
	if limit <= 0 {
		limit = 3
	}

	var entries []*JournalEntry
	err := s.db.SelectContext(ctx, &entries, `
        SELECT `+entryColumns+`
        FROM journal_entries
        WHERE user_id = ?
        ORDER BY date DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing recent journal entries", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list recent entries for user %s: %w", userID, err)
	}
	return entries, nil
}

// --- Weekly profiles ---

const profileColumns = `id, created_at, updated_at, user_id, week_start_date, week_end_date,
        features, analyzed_entries_count, confidence_score`

func (s *sqlxStore) getProfile(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*WeeklyProfile, error) {
	var profile WeeklyProfile
	err := sqlx.GetContext(ctx, q, &profile, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *sqlxStore) GetWeeklyProfileForWeek(ctx context.Context, userID string, weekStart Date) (*WeeklyProfile, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	profile, err := s.getProfile(ctx, s.db,
		`SELECT `+profileColumns+` FROM user_weekly_profiles WHERE user_id = ? AND week_start_date = ?`,
		userID, weekStart)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting weekly profile", "user_id", userID, "week_start", weekStart, "error", err)
		return nil, fmt.Errorf("failed to get weekly profile for week %s: %w", weekStart, err)
	}
	return profile, nil
}

func (s *sqlxStore) GetLatestWeeklyProfile(ctx context.Context, userID string) (*WeeklyProfile, error) {
	profile, err := s.getProfile(ctx, s.db, `
        SELECT `+profileColumns+`
        FROM user_weekly_profiles
        WHERE user_id = ?
        ORDER BY week_end_date DESC
        LIMIT 1
    `, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting latest weekly profile", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get latest weekly profile: %w", err)
	}
	return profile, nil
}

func (s *sqlxStore) GetWeeklyProfile(ctx context.Context, userID, profileID string) (*WeeklyProfile, error) {
	profile, err := s.getProfile(ctx, s.db,
		`SELECT `+profileColumns+` FROM user_weekly_profiles WHERE id = ? AND user_id = ?`,
		profileID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting weekly profile by id", "profile_id", profileID, "error", err)
		return nil, fmt.Errorf("failed to get weekly profile %s: %w", profileID, err)
	}
	return profile, nil
}

func (s *sqlxStore) ListWeeklyProfiles(ctx context.Context, userID string, limit int) ([]*WeeklyProfile, error) {
	if limit < 1 || limit > MaxProfileListLimit {
		s.logger.DebugContext(ctx, "Profile list limit out of range, using default", "limit", limit)
		limit = DefaultProfileListLimit
	}

	var profiles []*WeeklyProfile
	err := s.db.SelectContext(ctx, &profiles, `
        SELECT `+profileColumns+`
        FROM user_weekly_profiles
        WHERE user_id = ?
        ORDER BY week_end_date DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing weekly profiles", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list weekly profiles: %w", err)
	}
	return profiles, nil
}

func (s *sqlxStore) ListAllWeeklyProfiles(ctx context.Context, userID string) ([]*WeeklyProfile, error) {
	var profiles []*WeeklyProfile
	err := s.db.SelectContext(ctx, &profiles, `
        SELECT `+profileColumns+`
        FROM user_weekly_profiles
        WHERE user_id = ?
        ORDER BY week_end_date DESC
    `, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing all weekly profiles", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list weekly profiles: %w", err)
	}
	return profiles, nil
}

// UpsertWeeklyProfile writes the profile in a single transaction. Concurrent
// writers for the same week resolve last-write-wins on the same row.
func (s *sqlxStore) UpsertWeeklyProfile(ctx context.Context, profile *WeeklyProfile) error {
	if profile == nil {
		return errs.NewValidationError("cannot save nil weekly profile", nil)
	}
	if profile.UserID == "" {
		return errs.NewValidationError("weekly profile must have a user_id", nil)
	}
	if profile.Features == "" {
		return errs.NewValidationError("weekly profile must have features", nil)
	}

	now := s.now()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving weekly profile",
			"user_id", profile.UserID, "error", err)
		return errs.NewPersistenceError("failed to begin transaction", err)
	}
	defer s.rollback(ctx, &tx)

	query := `
        INSERT INTO user_weekly_profiles (
            id, user_id, week_start_date, week_end_date, features,
            analyzed_entries_count, confidence_score, created_at, updated_at
        ) VALUES (
            :id, :user_id, :week_start_date, :week_end_date, :features,
            :analyzed_entries_count, :confidence_score, :created_at, :updated_at
        )
        ON CONFLICT (user_id, week_start_date) DO UPDATE SET
            week_end_date = excluded.week_end_date,
            features = excluded.features,
            analyzed_entries_count = excluded.analyzed_entries_count,
            confidence_score = excluded.confidence_score,
            updated_at = excluded.updated_at
    `
	if _, err := tx.NamedExecContext(ctx, query, profile); err != nil {
		s.logger.ErrorContext(ctx, "Error saving weekly profile",
			"user_id", profile.UserID, "week_start", profile.WeekStartDate, "error", err)
		return errs.NewPersistenceError(fmt.Sprintf("failed to save weekly profile for week %s", profile.WeekStartDate), err)
	}

	// Read back the persisted identity; on conflict the original id and created_at win.
	stored, err := s.getProfile(ctx, tx,
		`SELECT `+profileColumns+` FROM user_weekly_profiles WHERE user_id = ? AND week_start_date = ?`,
		profile.UserID, profile.WeekStartDate)
	if err != nil || stored == nil {
		if err == nil {
			err = errors.New("row missing after upsert")
		}
		s.logger.ErrorContext(ctx, "Error reading back weekly profile", "user_id", profile.UserID, "error", err)
		return errs.NewPersistenceError("failed to read back weekly profile", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "user_id", profile.UserID, "error", err)
		return errs.NewPersistenceError("failed to commit transaction", err)
	}
	tx = nil

	*profile = *stored

	s.logger.DebugContext(ctx, "Weekly profile saved successfully",
		"user_id", profile.UserID, "week_start", profile.WeekStartDate, "profile_id", profile.ID)
	return nil
}

func (s *sqlxStore) DeleteWeeklyProfile(ctx context.Context, userID, profileID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.NewPersistenceError("failed to begin transaction", err)
	}
	defer s.rollback(ctx, &tx)

	var owner string
	err = tx.GetContext(ctx, &owner, `SELECT user_id FROM user_weekly_profiles WHERE id = ?`, profileID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("weekly profile not found")
	case err != nil:
		return fmt.Errorf("failed to look up weekly profile %s: %w", profileID, err)
	case owner != userID:
		s.logger.WarnContext(ctx, "Refusing to delete weekly profile of another user",
			"profile_id", profileID, "requested_by", userID)
		return errs.NewNotFoundError("weekly profile not found")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_weekly_profiles WHERE id = ? AND user_id = ?`, profileID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting weekly profile", "profile_id", profileID, "error", err)
		return errs.NewPersistenceError("failed to delete weekly profile", err)
	}

	if err := tx.Commit(); err != nil {
		return errs.NewPersistenceError("failed to commit transaction", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Weekly profile deleted", "profile_id", profileID, "user_id", userID)
	return nil
}

// rollback is deferred by every write; it is a no-op once *tx is set to nil after commit.
func (s *sqlxStore) rollback(ctx context.Context, tx **sqlx.Tx) {
	if *tx == nil {
		return
	}
	if err := (*tx).Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.WarnContext(ctx, "Error rolling back transaction", "error", err)
	}
}
