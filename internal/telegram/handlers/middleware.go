// Package handlers contains the Telegram command handlers, their
// registration and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/6are8/Plan-Smart/internal/database"
)

type userKey struct{}

// LinkedUser resolves the chat of a message to its user and stores it in the
// handler context. Messages from unlinked chats get a hint and stop here.
func LinkedUser(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "LinkedUser")

			user, err := deps.Store.GetUserByTelegramChatID(ctx, chatID)
			if err != nil {
				log.ErrorContext(ctx, "Failed to resolve chat to user", "chat_id", chatID, "error", err)
				reply(ctx, b, log, chatID, msgGeneralError)
				return
			}
			if user == nil {
				log.InfoContext(ctx, "Message from unlinked chat", "chat_id", chatID)
				reply(ctx, b, log, chatID, msgNotLinked)
				return
			}

			next(context.WithValue(ctx, userKey{}, user), b, update)
		}
	}
}

// userFrom returns the user stored by LinkedUser.
func userFrom(ctx context.Context) *database.User {
	u, _ := ctx.Value(userKey{}).(*database.User)
	return u
}
