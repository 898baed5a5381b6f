package config

import (
	"fmt"
	"strings"
	"time"

	"gostatcore/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Log       LogConfig       `mapstructure:"log"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// results in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// DataConfig holds the default data file
type DataConfig struct {
	ExcelFile string `mapstructure:"excel_file"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AnalysisConfig bounds computation units
type AnalysisConfig struct {
	MaxConcurrentUnits int64         `mapstructure:"max_concurrent_units"`
	UnitTimeout        time.Duration `mapstructure:"unit_timeout"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
}

// environment variable for every key
var envBindings = map[string]string{
	"database.url":                  "DATABASE_URL",
	"server.port":                   "PORT",
	"server.gin_mode":               "GIN_MODE",
	"data.excel_file":               "EXCEL_FILE",
	"log.level":                     "LOG_LEVEL",
	"analysis.max_concurrent_units": "MAX_CONCURRENT_UNITS",
	"analysis.unit_timeout":         "UNIT_TIMEOUT",
	"metrics.enabled":               "METRICS_ENABLED",
	"profiling.port":                "PPROF_PORT",
	"profiling.enabled":             "PPROF_ENABLED",
}

// Load reads configuration from .env and environment variables and validates it
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an optional YAML/JSON/TOML file underneath the
// environment. Environment variables win over the file.
func LoadFile(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	applyDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrap(err, "failed to bind "+env)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read config %s: %w", path, err))
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("unmarshal config: %w", err))
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("data.excel_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("analysis.max_concurrent_units", 4)
	v.SetDefault("analysis.unit_timeout", 2*time.Minute)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("profiling.port", "6060")
	v.SetDefault("profiling.enabled", false)
}

func validateConfig(config *Config) error {
	if config.Analysis.MaxConcurrentUnits < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_UNITS must be at least 1")
	}
	if config.Analysis.UnitTimeout < 0 {
		return errors.ConfigInvalid("UNIT_TIMEOUT must not be negative")
	}
	switch strings.ToLower(config.Server.GinMode) {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown GIN_MODE %q", config.Server.GinMode))
	}
	return nil
}
