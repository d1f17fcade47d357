package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/logger"
)

// MessageSender is the part of *bot.Bot the notifier needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier pushes texts to users with a linked Telegram chat.
type Notifier struct {
	sender MessageSender
	log    *slog.Logger
}

// NewNotifier creates a Notifier sending through sender.
func NewNotifier(sender MessageSender, log *slog.Logger) *Notifier {
	if log == nil {
		log = logger.Discard()
	}
	return &Notifier{sender: sender, log: log.With("component", "telegram_notifier")}
}

// SendText sends text to the user's linked chat. Users without a chat are
// skipped silently.
func (n *Notifier) SendText(ctx context.Context, user *database.User, text string) error {
	if user == nil || !user.TelegramChatID.Valid || user.TelegramChatID.Int64 == 0 {
		return nil
	}

	chatID := user.TelegramChatID.Int64
	if _, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		n.log.ErrorContext(ctx, "Failed to send Telegram message", "user_id", user.ID, "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	n.log.DebugContext(ctx, "Telegram message sent", "user_id", user.ID, "chat_id", chatID, "length", len(text))
	return nil
}

// SendDigest sends the weekly profile summary of a finished analysis.
func (n *Notifier) SendDigest(ctx context.Context, user *database.User, profile *database.WeeklyProfile, summary string) error {
	if profile == nil {
		return nil
	}
	return n.SendText(ctx, user, FormatDigest(profile, summary))
}

// FormatDigest renders the weekly digest message.
func FormatDigest(profile *database.WeeklyProfile, summary string) string {
	return fmt.Sprintf("📊 Dein Wochenprofil (%s bis %s)\n\n%s\n\nAusgewertete Einträge: %d, Aussagekraft: %d %%",
		profile.WeekStartDate.Format("02.01."),
		profile.WeekEndDate.Format("02.01.2006"),
		summary,
		profile.AnalyzedEntriesCount,
		int(math.Round(profile.ConfidenceScore*100)),
	)
}
