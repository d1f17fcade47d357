package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets linked users and explains linking to everyone else.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil {
		log.WarnContext(ctx, "Start handler received update without message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID)

	user, err := h.deps.Store.GetUserByTelegramChatID(ctx, chatID)
	switch {
	case err != nil:
		log.ErrorContext(ctx, "Failed to look up chat", "chat_id", chatID, "error", err)
		reply(ctx, b, log, chatID, msgGeneralError)
	case user == nil:
		reply(ctx, b, log, chatID, fmt.Sprintf(msgWelcomeUnlinked, chatID, chatID))
	default:
		reply(ctx, b, log, chatID, fmt.Sprintf(msgWelcomeLinked, user.Username))
	}
}

// NewHelpHandler returns a handler for the /hilfe command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	log := deps.Logger.With("handler", "help")
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		reply(ctx, b, log, update.Message.Chat.ID, msgHelp)
	}
}
