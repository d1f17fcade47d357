package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Telegram clears the typing status after about five seconds.
const typingInterval = 4 * time.Second

// keepTyping shows the typing indicator in chatID until the returned stop
// function is called.
func keepTyping(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			if err := sendTyping(ctx, b, chatID); err != nil && ctx.Err() == nil {
				log.DebugContext(ctx, "Typing action failed", "chat_id", chatID, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func sendTyping(ctx context.Context, b *bot.Bot, chatID int64) error {
	_, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	return err
}
