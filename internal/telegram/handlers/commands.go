package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

// replyBuilder computes the answer to a command of a linked user.
type replyBuilder func(ctx context.Context, user *database.User) (string, error)

// newTextCommand adapts build to a handler. It must run behind LinkedUser.
func newTextCommand(deps HandlerDeps, name string, build replyBuilder) bot.HandlerFunc {
	log := deps.Logger.With("handler", name)

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		user := userFrom(ctx)
		if user == nil {
			log.ErrorContext(ctx, "Command reached handler without a linked user", "chat_id", chatID)
			reply(ctx, b, log, chatID, msgNotLinked)
			return
		}

		stopTyping := keepTyping(ctx, b, log, chatID)
		text, err := build(ctx, user)
		stopTyping()
		if err != nil {
			log.ErrorContext(ctx, "Command failed", "user_id", user.ID, "error", err)
			reply(ctx, b, log, chatID, msgGeneralError)
			return
		}

		log.InfoContext(ctx, "Answering command", "user_id", user.ID, "chat_id", chatID)
		reply(ctx, b, log, chatID, text)
	}
}

func profileReply(deps HandlerDeps) replyBuilder {
	return func(ctx context.Context, user *database.User) (string, error) {
		fs, err := deps.Profiles.LatestFeatures(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if fs == nil {
			return msgNoProfile, nil
		}

		var sb strings.Builder
		sb.WriteString("📊 Dein aktuelles Wochenprofil\n\n")
		sb.WriteString(weekly.FormatSummary(fs))
		if fs.Persona != nil && len(fs.Persona.CoachingNotes) > 0 {
			sb.WriteString("\n\nHinweise:")
			for _, note := range fs.Persona.CoachingNotes {
				sb.WriteString("\n• " + note)
			}
		}
		return sb.String(), nil
	}
}

func statsReply(deps HandlerDeps) replyBuilder {
	return func(ctx context.Context, user *database.User) (string, error) {
		stats, err := deps.Profiles.Stats(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if stats.TotalProfiles == 0 {
			return msgNoProfile, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📈 %d Wochenprofile", stats.TotalProfiles)
		if stats.LatestProfileDate != "" {
			fmt.Fprintf(&sb, ", zuletzt bis %s", stats.LatestProfileDate)
		}
		if stats.AverageConfidence != nil {
			fmt.Fprintf(&sb, "\nDurchschnittliche Aussagekraft: %.0f %%", *stats.AverageConfidence*100)
		}
		if len(stats.TopInterests) > 0 {
			parts := make([]string, 0, len(stats.TopInterests))
			for _, ic := range stats.TopInterests {
				parts = append(parts, fmt.Sprintf("%s (%d)", ic.Interest, ic.Count))
			}
			sb.WriteString("\nInteressen: " + strings.Join(parts, ", "))
		}
		return sb.String(), nil
	}
}

// historyWeeks is how many weeks /verlauf lists.
const historyWeeks = 5

func historyReply(deps HandlerDeps) replyBuilder {
	return func(ctx context.Context, user *database.User) (string, error) {
		profiles, err := deps.Profiles.History(ctx, user.ID, historyWeeks)
		if err != nil {
			return "", err
		}
		if len(profiles) == 0 {
			return msgNoProfile, nil
		}

		var sb strings.Builder
		sb.WriteString("🗂 Deine letzten Wochen:")
		for _, p := range profiles {
			summary := "Profil nicht lesbar"
			if fs, err := weekly.DecodeFeatures(p.Features); err == nil {
				summary = weekly.FormatSummary(&fs)
			}
			fmt.Fprintf(&sb, "\n\n%s bis %s (%d Einträge)\n%s",
				p.WeekStartDate.Format("02.01."), p.WeekEndDate.Format("02.01.2006"), p.AnalyzedEntriesCount, summary)
		}
		return sb.String(), nil
	}
}

func suggestionsReply(deps HandlerDeps) replyBuilder {
	return func(ctx context.Context, user *database.User) (string, error) {
		suggestions, err := deps.Planner.SuggestTomorrow(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if len(suggestions) == 0 {
			return msgNoSuggestions, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "💡 Vorschläge für %s:", suggestions[0].Day)
		for _, s := range suggestions {
			sb.WriteString("\n• " + s.Text)
		}
		return sb.String(), nil
	}
}

func eveningReply(deps HandlerDeps) replyBuilder {
	return func(ctx context.Context, user *database.User) (string, error) {
		return deps.Planner.EveningPrompt(ctx, user.ID)
	}
}
