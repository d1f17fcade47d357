package tasks

import (
	"time"

	"github.com/6are8/Plan-Smart/internal/config"
	"github.com/6are8/Plan-Smart/internal/logger"
)

// RegisterAllTasks returns every task keyed by the name used in the
// scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	tasks := map[string]ScheduledTaskFunc{
		config.TaskWeeklyAnalysis: newWeeklyAnalysisTask(deps),
		config.TaskSQLMaintenance: newSQLMaintenanceTask(deps),
		config.TaskMorningPlans:   newMorningPlansTask(deps),
		config.TaskEveningPrompts: newEveningPromptsTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
