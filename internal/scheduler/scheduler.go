// Package scheduler runs registered tasks on cron schedules with gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/6are8/Plan-Smart/internal/config"
	"github.com/6are8/Plan-Smart/internal/logger"
	"github.com/6are8/Plan-Smart/internal/tasks"
)

// TaskObserver receives the result of every task run.
type TaskObserver interface {
	ObserveTask(task string, err error, d time.Duration)
}

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	observer  TaskObserver

	// baseCtx is passed to every task run and cancelled by Stop.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	running bool
}

// New creates a scheduler for the tasks in taskMap. Only tasks that are both
// registered and enabled in cfg are scheduled. observer may be nil.
func New(log *slog.Logger, cfg config.SchedulerConfig, loc *time.Location, taskMap map[string]tasks.ScheduledTaskFunc, observer TaskObserver) (*Scheduler, error) {
	if log == nil {
		log = logger.Discard()
	}
	if loc == nil {
		loc = time.UTC
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(logger.NewGocronLogger(log)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		baseCtx:   baseCtx,
		cancel:    cancel,
		logger:    log.With("component", "scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
		observer:  observer,
	}, nil
}

// Start schedules all enabled tasks and starts ticking. A stopped scheduler
// cannot be started again.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	if s.baseCtx.Err() != nil {
		return fmt.Errorf("scheduler was stopped")
	}

	scheduled := 0
	for name, taskCfg := range s.cfg.Tasks {
		if !taskCfg.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", name)
			continue
		}

		taskFunc, ok := s.taskMap[name]
		if !ok {
			s.logger.Warn("Scheduled task configured but not registered, skipping", "task_name", name)
			continue
		}

		_, err := s.scheduler.NewJob(
			gocron.CronJob(taskCfg.Schedule, false),
			gocron.NewTask(s.run, name, taskFunc),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", name, "schedule", taskCfg.Schedule, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", name, "schedule", taskCfg.Schedule)
		scheduled++
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", scheduled)
	return nil
}

// run wraps one task execution with logging and observation.
func (s *Scheduler) run(name string, taskFunc tasks.ScheduledTaskFunc) {
	ctx := s.baseCtx
	s.logger.InfoContext(ctx, "Running scheduled task", "task_name", name)
	start := time.Now()

	err := taskFunc(ctx)
	duration := time.Since(start)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled task failed", "task_name", name, "error", err, "duration", duration)
	} else {
		s.logger.InfoContext(ctx, "Finished scheduled task", "task_name", name, "duration", duration)
	}

	if s.observer != nil {
		s.observer.ObserveTask(name, err, duration)
	}
}

// JobNames returns the names of the scheduled jobs.
func (s *Scheduler) JobNames() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

// RunNow triggers the named job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	for _, j := range s.scheduler.Jobs() {
		if j.Name() == name {
			return j.RunNow()
		}
	}
	return fmt.Errorf("no scheduled job named %q", name)
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully")
	}

	s.running = false
	return err
}
