package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/6are8/Plan-Smart/internal/logger"
)

// RegisteredHandler is one command with its match rules and middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns every bot command keyed by its slash name.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}

	handlers := map[string]RegisteredHandler{
		"/start": command("start", NewStartHandler(deps)),
		"/hilfe": command("hilfe", NewHelpHandler(deps)),
		"/help":  command("help", NewHelpHandler(deps)),
	}

	linked := []tgbot.Middleware{LinkedUser(deps)}
	for name, build := range map[string]replyBuilder{
		"profil":      profileReply(deps),
		"statistik":   statsReply(deps),
		"verlauf":     historyReply(deps),
		"vorschlaege": suggestionsReply(deps),
		"abend":       eveningReply(deps),
	} {
		h := command(name, newTextCommand(deps, name, build))
		h.Middleware = linked
		handlers["/"+name] = h
	}

	return handlers
}

func command(pattern string, h tgbot.HandlerFunc) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Handler:     h,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
}
