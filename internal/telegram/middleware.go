package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// LogUpdates logs every incoming update with its command and handling time.
// Message text beyond the command is not logged; it is journal content.
func LogUpdates(log *slog.Logger) bot.Middleware {
	log = log.With("component", "telegram_updates")

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			entry := log.With("update_id", update.ID)

			if update.Message != nil {
				command, _, _ := strings.Cut(update.Message.Text, " ")
				if !strings.HasPrefix(command, "/") {
					command = ""
				}
				entry = entry.With("chat_id", update.Message.Chat.ID, "command", command)
			} else {
				entry = entry.With("update_type", "other")
			}

			entry.DebugContext(ctx, "Received update")
			next(ctx, b, update)
			entry.InfoContext(ctx, "Handled update", "duration_ms", time.Since(start).Milliseconds())
		}
	}
}
