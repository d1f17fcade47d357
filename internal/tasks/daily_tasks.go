package tasks

import (
	"context"
	"fmt"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/plan"
)

// newMorningPlansTask creates the task that writes today's plan for every
// user who has none yet and delivers it when a sender is configured.
func newMorningPlansTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "morning_plans")

	return func(ctx context.Context) error {
		users, err := deps.Store.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		today := database.NewDate(deps.Now())
		var generated, skipped, failed int
		for _, u := range users {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			existing, err := deps.Store.ListEntriesInRange(ctx, u.ID, today, today)
			if err != nil {
				log.WarnContext(ctx, "Could not check today's entry", "user_id", u.ID, "error", err)
				failed++
				continue
			}
			if len(existing) > 0 && existing[0].MorningPlan.Valid && existing[0].MorningPlan.String != "" {
				skipped++
				continue
			}

			entry, err := deps.Planner.MorningPlan(ctx, u.ID, plan.MorningInput{})
			if err != nil {
				log.WarnContext(ctx, "Morning plan failed", "user_id", u.ID, "error", err)
				failed++
				continue
			}
			generated++

			if deps.Sender != nil {
				if err := deps.Sender.SendText(ctx, u, entry.MorningPlan.String); err != nil {
					log.WarnContext(ctx, "Morning plan delivery failed", "user_id", u.ID, "error", err)
				}
			}
		}

		log.InfoContext(ctx, "Morning plans done", "users", len(users), "generated", generated, "skipped", skipped, "failed", failed)
		return failureSummary("morning plans", failed, len(users))
	}
}

// newEveningPromptsTask creates the task that sends the reflection prompt to
// every user with a delivery channel.
func newEveningPromptsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "evening_prompts")

	return func(ctx context.Context) error {
		if deps.Sender == nil {
			log.InfoContext(ctx, "No delivery channel configured, skipping evening prompts")
			return nil
		}

		users, err := deps.Store.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		var sent, failed int
		for _, u := range users {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !u.TelegramChatID.Valid {
				continue
			}

			text, err := deps.Planner.EveningPrompt(ctx, u.ID)
			if err == nil {
				err = deps.Sender.SendText(ctx, u, text)
			}
			if err != nil {
				log.WarnContext(ctx, "Evening prompt failed", "user_id", u.ID, "error", err)
				failed++
				continue
			}
			sent++
		}

		log.InfoContext(ctx, "Evening prompts done", "sent", sent, "failed", failed)
		return failureSummary("evening prompts", failed, sent+failed)
	}
}

func failureSummary(what string, failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%s failed for %d of %d users", what, failed, total)
}
