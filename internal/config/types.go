// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"time"
)

// Config defines the application configuration. Values can be set via environment
// variables prefixed with PLANSMART_ (e.g., PLANSMART_AI_API_KEY) or through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	AI        AIConfig        `mapstructure:"ai"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DatabaseConfig defines the SQLite storage settings.
type DatabaseConfig struct {
	Path             string        `mapstructure:"path"              validate:"required"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"min=1s,max=5m"`
}

// AIConfig selects and configures the text generation backend.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"    validate:"required,oneof=gemini ollama"`
	APIKey      string        `mapstructure:"api_key"     validate:"required_if=Provider gemini"`
	BaseURL     string        `mapstructure:"base_url"    validate:"omitempty,url"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" validate:"min=0,max=1m"`
}

// AnalysisConfig tunes the weekly profile pipeline.
type AnalysisConfig struct {
	FeatureMode      string `mapstructure:"feature_mode"      validate:"required,oneof=analysis persona"`
	SweepConcurrency int    `mapstructure:"sweep_concurrency" validate:"min=1,max=64"`
}

// CacheConfig selects the cache backend for derived per-day values.
type CacheConfig struct {
	Driver      string `mapstructure:"driver"       validate:"required,oneof=memory redis"`
	RedisAddr   string `mapstructure:"redis_addr"   validate:"required_if=Driver redis"`
	RedisDB     int    `mapstructure:"redis_db"     validate:"min=0,max=15"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// TelegramConfig configures weekly digest delivery.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token" validate:"required_if=Enabled true"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// SchedulerConfig lists the scheduled tasks by registered name.
type SchedulerConfig struct {
	Timezone string                `mapstructure:"timezone"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
