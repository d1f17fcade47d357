// Package main contains the plansmart command line entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/6are8/Plan-Smart/internal/app"
	"github.com/6are8/Plan-Smart/internal/config"
	"github.com/6are8/Plan-Smart/internal/logger"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "plansmart",
		Short:         "Plan-Smart journaling backend: weekly profiles, daily plans and reminders",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default ./config.yaml)")

	// setup loads the configuration and builds the application for a subcommand.
	setup := func(cmd *cobra.Command) (*app.App, *slog.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format == "json")
		slog.SetDefault(log)

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Error("Failed to initialize application", "error", err)
			return nil, nil, err
		}
		return a, log, nil
	}

	root.AddCommand(
		serveCmd(setup),
		analyzeCmd(setup),
		sweepCmd(setup),
		statsCmd(setup),
		historyCmd(setup),
		profileCmd(setup),
		deleteProfileCmd(setup),
		addUserCmd(setup),
		linkCmd(setup),
		morningCmd(setup),
		suggestCmd(setup),
	)
	return root
}

type setupFunc func(cmd *cobra.Command) (*app.App, *slog.Logger, error)

func serveCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, the Telegram bot and the metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			log.Info("Starting Plan-Smart...", "version", Version)
			if err := a.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
