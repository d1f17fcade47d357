// Package app wires the Plan-Smart components together and runs them until
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/6are8/Plan-Smart/internal/cache"
	"github.com/6are8/Plan-Smart/internal/config"
	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/llm"
	"github.com/6are8/Plan-Smart/internal/metrics"
	"github.com/6are8/Plan-Smart/internal/plan"
	"github.com/6are8/Plan-Smart/internal/scheduler"
	"github.com/6are8/Plan-Smart/internal/tasks"
	"github.com/6are8/Plan-Smart/internal/telegram"
	"github.com/6are8/Plan-Smart/internal/telegram/handlers"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

const metricsShutdownTimeout = 5 * time.Second

// App holds the constructed components. Telegram and metrics are nil when
// disabled in the configuration.
type App struct {
	cfg *config.Config
	log *slog.Logger
	now func() time.Time

	db       *sqlx.DB
	store    database.Store
	cache    cache.Cache
	analyzer *weekly.Analyzer
	planner  *plan.Service
	metrics  *metrics.Metrics
	bot      *tgbot.Bot
	notifier *telegram.Notifier
}

// New builds every component from cfg. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	loc := cfg.Location()
	a := &App{
		cfg: cfg,
		log: log.With("component", "app"),
		now: func() time.Time { return time.Now().In(loc) },
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db
	a.store = database.NewStore(db, log)

	if a.cache, err = cache.New(ctx, cfg.Cache, log); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	gen, err := llm.New(ctx, cfg.AI, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}

	mode, err := weekly.ParseMode(cfg.Analysis.FeatureMode)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []weekly.Option{
		weekly.WithCache(a.cache),
		weekly.WithClock(a.now),
		weekly.WithMode(mode),
		weekly.WithSweepConcurrency(cfg.Analysis.SweepConcurrency),
		weekly.WithLogger(log),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.metrics = metrics.New(reg)
		opts = append(opts, weekly.WithRecorder(a.metrics))
	}

	if cfg.Telegram.Enabled {
		a.bot, err = telegram.NewBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(telegram.LogUpdates(log)))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.notifier = telegram.NewNotifier(a.bot, log)
		opts = append(opts, weekly.WithNotifier(a.notifier))
	}

	a.analyzer = weekly.NewAnalyzer(a.store, weekly.NewExtractor(gen, cfg.AI.Timeout, log), opts...)
	a.planner = plan.NewService(a.store, gen, a.analyzer, a.cache, cfg.AI.Timeout, log, plan.WithClock(a.now))

	if a.bot != nil {
		cmds := handlers.RegisterAllCommands(handlers.HandlerDeps{
			Logger:   log,
			Store:    a.store,
			Profiles: a.analyzer,
			Planner:  a.planner,
		})
		if err := telegram.RegisterHandlers(a.bot, log, cmds); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.log.InfoContext(ctx, "Application initialized",
		"ai_provider", cfg.AI.Provider,
		"feature_mode", mode,
		"cache_driver", cfg.Cache.Driver,
		"telegram", cfg.Telegram.Enabled,
		"metrics", cfg.Metrics.Enabled)
	return a, nil
}

// Store returns the data access layer.
func (a *App) Store() database.Store { return a.store }

// Analyzer returns the weekly profile analyzer.
func (a *App) Analyzer() *weekly.Analyzer { return a.analyzer }

// Planner returns the daily plan service.
func (a *App) Planner() *plan.Service { return a.planner }

// Tasks returns the scheduled tasks bound to this App's components.
func (a *App) Tasks() map[string]tasks.ScheduledTaskFunc {
	deps := tasks.TaskDeps{
		Logger:    a.log,
		Store:     a.store,
		Sweeper:   a.analyzer,
		Planner:   a.planner,
		Now:       a.now,
		DBTimeout: a.cfg.Database.OperationTimeout,
	}
	// A typed nil would make the sender look configured.
	if a.notifier != nil {
		deps.Sender = a.notifier
	}
	return tasks.RegisterAllTasks(deps)
}

// Run starts the scheduler, the Telegram listener and the metrics server and
// blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	var observer scheduler.TaskObserver
	if a.metrics != nil {
		observer = a.metrics
	}
	sched, err := scheduler.New(a.log, a.cfg.Scheduler, a.cfg.Location(), a.Tasks(), observer)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		a.log.Info("Shutdown signal received, stopping scheduler...")
		return sched.Stop()
	})

	if a.bot != nil {
		g.Go(func() error {
			a.log.Info("Starting Telegram bot listener...")
			a.bot.Start(gCtx)
			if gCtx.Err() == nil {
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if a.metrics != nil {
		g.Go(func() error { return a.serveMetrics(gCtx) })
	}

	a.log.Info("Application running. Waiting for shutdown signal or error...")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("Application stopped due to error", "error", err)
		return err
	}
	a.log.Info("Application stopped gracefully")
	return nil
}

func (a *App) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Metrics server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases the cache and the database.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("Error closing cache", "error", err)
		}
	}
	database.CloseDB(a.db)
}
