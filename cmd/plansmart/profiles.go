package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

func analyzeCmd(setup setupFunc) *cobra.Command {
	var (
		userID string
		week   string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build the weekly profile of one user",
		Long: `Build the weekly profile of one user. Without --week the week that
contains today is analyzed. A date that is not a Monday is moved back to the
Monday of its week.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var weekStart *time.Time
			if week != "" {
				d, err := database.ParseDate(week)
				if err != nil {
					return fmt.Errorf("invalid --week: %w", err)
				}
				weekStart = &d.Time
			}

			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.Analyzer().AnalyzeUserWeek(cmd.Context(), userID, weekStart, force)
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), profile)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&week, "week", "w", "", "any date of the week to analyze (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "recompute even if a profile exists")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func sweepCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Analyze the current week for every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Analyzer().AnalyzeAllUsers(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func statsCmd(setup setupFunc) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated statistics of a user's weekly profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Analyzer().Stats(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func deleteProfileCmd(setup setupFunc) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "delete-profile <profile-id>",
		Short: "Delete one weekly profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Analyzer().DeleteProfile(cmd.Context(), userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted profile %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func historyCmd(setup setupFunc) *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's weekly profiles, newest week first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			profiles, err := a.Analyzer().History(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			views := make([]profileView, 0, len(profiles))
			for _, p := range profiles {
				views = append(views, newProfileView(p))
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().IntVarP(&limit, "limit", "n", database.DefaultProfileListLimit,
		fmt.Sprintf("number of profiles (1..%d)", database.MaxProfileListLimit))
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func profileCmd(setup setupFunc) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "profile <profile-id>",
		Short: "Show one weekly profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.Analyzer().Profile(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), profile)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// profileView is the printable form of a weekly profile with decoded features.
type profileView struct {
	ID              string             `json:"id"`
	WeekStart       string             `json:"week_start"`
	WeekEnd         string             `json:"week_end"`
	AnalyzedEntries int                `json:"analyzed_entries_count"`
	Confidence      float64            `json:"confidence_score"`
	Features        *weekly.FeatureSet `json:"features,omitempty"`
	Summary         string             `json:"summary,omitempty"`
}

func writeProfile(w io.Writer, p *database.WeeklyProfile) error {
	return writeJSON(w, newProfileView(p))
}

func newProfileView(p *database.WeeklyProfile) profileView {
	view := profileView{
		ID:              p.ID,
		WeekStart:       p.WeekStartDate.String(),
		WeekEnd:         p.WeekEndDate.String(),
		AnalyzedEntries: p.AnalyzedEntriesCount,
		Confidence:      p.ConfidenceScore,
	}
	if fs, err := weekly.DecodeFeatures(p.Features); err == nil {
		view.Features = &fs
		view.Summary = weekly.FormatSummary(&fs)
	}
	return view
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
