package telegram

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/logger"
	"github.com/6are8/Plan-Smart/internal/telegram/handlers"
)

type recordingSender struct {
	params []*bot.SendMessageParams
	err    error
}

func (s *recordingSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	s.params = append(s.params, params)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Message{ID: len(s.params)}, nil
}

func testProfile(t *testing.T) *database.WeeklyProfile {
	t.Helper()
	start, err := database.ParseDate("2024-06-03")
	require.NoError(t, err)
	return &database.WeeklyProfile{
		WeekStartDate:        start,
		WeekEndDate:          start.AddDays(6),
		AnalyzedEntriesCount: 3,
		ConfidenceScore:      3.0 / 7,
	}
}

func TestSendDigest(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	n := NewNotifier(sender, nil)
	linked := &database.User{ID: "u1", TelegramChatID: sql.NullInt64{Int64: 42, Valid: true}}

	require.NoError(t, n.SendDigest(context.Background(), linked, testProfile(t), "Stress: mittel"))
	require.Len(t, sender.params, 1)
	assert.Equal(t, int64(42), sender.params[0].ChatID)
	assert.Equal(t,
		"📊 Dein Wochenprofil (03.06. bis 09.06.2024)\n\nStress: mittel\n\nAusgewertete Einträge: 3, Aussagekraft: 43 %",
		sender.params[0].Text)
}

func TestSendTextSkipsUnlinkedUsers(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	n := NewNotifier(sender, nil)
	ctx := context.Background()

	require.NoError(t, n.SendText(ctx, nil, "x"))
	require.NoError(t, n.SendText(ctx, &database.User{ID: "u1"}, "x"))
	require.NoError(t, n.SendDigest(ctx, &database.User{ID: "u1", TelegramChatID: sql.NullInt64{Int64: 1, Valid: true}}, nil, "x"))
	assert.Empty(t, sender.params)
}

func TestSendTextError(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{err: errors.New("forbidden: bot was blocked by the user")}
	n := NewNotifier(sender, nil)
	user := &database.User{ID: "u1", TelegramChatID: sql.NullInt64{Int64: 42, Valid: true}}

	err := n.SendText(context.Background(), user, "Guten Morgen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 42")
}

func TestNewBotAndRegister(t *testing.T) {
	t.Parallel()

	_, err := NewBot("", nil)
	require.Error(t, err)

	b, err := NewBot("123:test", nil, bot.WithSkipGetMe())
	require.NoError(t, err)

	cmds := handlers.RegisterAllCommands(handlers.HandlerDeps{})
	require.NoError(t, RegisterHandlers(b, nil, cmds))
	assert.Error(t, RegisterHandlers(nil, nil, cmds))
}

func TestApplyMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, u *models.Update) {
				order = append(order, name)
				next(ctx, b, u)
			}
		}
	}
	h := applyMiddleware(func(context.Context, *bot.Bot, *models.Update) { order = append(order, "handler") },
		[]bot.Middleware{mw("outer"), mw("inner")})

	h(context.Background(), nil, &models.Update{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLogUpdatesOmitsJournalText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := LogUpdates(logger.New(&buf, "debug", true))

	called := false
	h := mw(func(context.Context, *bot.Bot, *models.Update) { called = true })
	h(context.Background(), nil, &models.Update{ID: 5, Message: &models.Message{
		Chat: models.Chat{ID: 42},
		Text: "/profil mein geheimer Eintrag",
	}})

	assert.True(t, called)
	out := buf.String()
	assert.Contains(t, out, `"command":"/profil"`)
	assert.Contains(t, out, `"chat_id":42`)
	assert.NotContains(t, out, "geheimer")
}
