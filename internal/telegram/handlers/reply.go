package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
)

func reply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
	}
}
