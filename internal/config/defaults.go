package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Database defaults
	DefaultDBPath             = "plansmart.db"
	DefaultDBOperationTimeout = 15 * time.Second

	// AI defaults
	DefaultAIProvider    = "gemini"
	DefaultAIModel       = "gemini-2.0-flash"
	DefaultAITemperature = 0.7
	DefaultAITimeout     = 200 * time.Second // Local models can be slow on a full week transcript
	DefaultAIMaxRetries  = 3
	DefaultAIRetryDelay  = 2 * time.Second

	// Analysis defaults
	DefaultAnalysisFeatureMode      = "persona"
	DefaultAnalysisSweepConcurrency = 4

	// Cache defaults
	DefaultCacheDriver      = "memory"
	DefaultCacheRedisPrefix = "plansmart:"

	// Metrics defaults
	DefaultMetricsAddr = ":9090"

	// Scheduler defaults
	DefaultWeeklyAnalysisSchedule = "0 20 * * 0" // Sunday evening, before the week closes
	DefaultSQLMaintenanceSchedule = "0 3 * * 1"
	DefaultMorningPlansSchedule   = "0 6 * * *"
	DefaultEveningPromptsSchedule = "0 20 * * *" // Off by default; only delivered through Telegram
)

// Task names known to the scheduler.
const (
	TaskWeeklyAnalysis = "weekly_analysis"
	TaskSQLMaintenance = "sql_maintenance"
	TaskMorningPlans   = "morning_plans"
	TaskEveningPrompts = "evening_prompts"
)

// KnownTasks lists every task name the scheduler can run.
var KnownTasks = []string{TaskWeeklyAnalysis, TaskSQLMaintenance, TaskMorningPlans, TaskEveningPrompts}

var defaults = map[string]any{
	"log.level":  DefaultLogLevel,
	"log.format": DefaultLogFormat,

	"database.path":              DefaultDBPath,
	"database.operation_timeout": DefaultDBOperationTimeout,

	"ai.provider":    DefaultAIProvider,
	"ai.model":       DefaultAIModel,
	"ai.temperature": DefaultAITemperature,
	"ai.timeout":     DefaultAITimeout,
	"ai.max_retries": DefaultAIMaxRetries,
	"ai.retry_delay": DefaultAIRetryDelay,

	"analysis.feature_mode":      DefaultAnalysisFeatureMode,
	"analysis.sweep_concurrency": DefaultAnalysisSweepConcurrency,

	"cache.driver":       DefaultCacheDriver,
	"cache.redis_prefix": DefaultCacheRedisPrefix,

	"telegram.enabled": false,

	"metrics.enabled": false,
	"metrics.addr":    DefaultMetricsAddr,

	"scheduler.tasks." + TaskWeeklyAnalysis + ".enabled":  true,
	"scheduler.tasks." + TaskWeeklyAnalysis + ".schedule": DefaultWeeklyAnalysisSchedule,
	"scheduler.tasks." + TaskSQLMaintenance + ".enabled":  true,
	"scheduler.tasks." + TaskSQLMaintenance + ".schedule": DefaultSQLMaintenanceSchedule,
	"scheduler.tasks." + TaskMorningPlans + ".enabled":    true,
	"scheduler.tasks." + TaskMorningPlans + ".schedule":   DefaultMorningPlansSchedule,
	"scheduler.tasks." + TaskEveningPrompts + ".enabled":  false,
	"scheduler.tasks." + TaskEveningPrompts + ".schedule": DefaultEveningPromptsSchedule,
}
