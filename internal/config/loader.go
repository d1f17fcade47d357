package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/6are8/Plan-Smart/internal/errs"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "PLANSMART"

// Load loads and validates configuration from:
// 1. Default values
// 2. the config file at path (config.yaml in the working directory when empty)
// 3. PLANSMART_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errs.NewConfigError("failed to read config file", err)
		}
		slog.Info("configuration file not found, using defaults and environment")
	}

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"ai.api_key", "ai.base_url", "telegram.token", "cache.redis_addr", "cache.redis_db", "scheduler.timezone"} {
		if err := v.BindEnv(key); err != nil {
			return nil, errs.NewConfigError(fmt.Sprintf("failed to bind env for %s", key), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully",
		"config_file", v.ConfigFileUsed(),
		"ai_provider", cfg.AI.Provider,
		"ai_model", cfg.AI.Model,
		"feature_mode", cfg.Analysis.FeatureMode,
		"cache_driver", cfg.Cache.Driver,
		"db_path", cfg.Database.Path)

	return cfg, nil
}
