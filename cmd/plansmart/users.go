package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/plan"
)

func addUserCmd(setup setupFunc) *cobra.Command {
	var (
		city      string
		sleepGoal float64
	)

	cmd := &cobra.Command{
		Use:   "add-user <username>",
		Short: "Create a user and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			u := &database.User{Username: args[0], City: city, SleepGoalHours: sleepGoal}
			if err := a.Store().CreateUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "home city used for the morning plan")
	cmd.Flags().Float64Var(&sleepGoal, "sleep-goal", 8, "sleep goal in hours")
	return cmd
}

func linkCmd(setup setupFunc) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "link <telegram-chat-id>",
		Short: "Link a Telegram chat to a user",
		Long: `Link a Telegram chat to a user. The chat id is shown by the bot's
/start command in an unlinked chat.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q: %w", args[0], err)
			}

			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Store().LinkTelegramChat(cmd.Context(), userID, chatID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked chat %d to user %s\n", chatID, userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func morningCmd(setup setupFunc) *cobra.Command {
	var (
		userID  string
		weather string
		sleep   float64
	)

	cmd := &cobra.Command{
		Use:   "morning",
		Short: "Generate today's morning plan for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in := plan.MorningInput{Weather: weather}
			if cmd.Flags().Changed("sleep") {
				in.SleepHours = &sleep
			}
			entry, err := a.Planner().MorningPlan(cmd.Context(), userID, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.MorningPlan.String)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().StringVar(&weather, "weather", "", "short weather description")
	cmd.Flags().Float64Var(&sleep, "sleep", 0, "hours slept last night")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func suggestCmd(setup setupFunc) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest tasks for tomorrow from recent journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			suggestions, err := a.Planner().SuggestTomorrow(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), suggestions)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
