package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Sampler  SamplerConfig  `mapstructure:"sampler"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Classify ClassifyConfig `mapstructure:"classification"`
	Daylog   DaylogConfig   `mapstructure:"daily_log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SamplerConfig defines foreground polling behavior
type SamplerConfig struct {
	Interval        string   `mapstructure:"interval"`
	ProviderCommand string   `mapstructure:"provider_command"` // command printing the foreground app name
	ProviderArgs    []string `mapstructure:"provider_args"`
	ProviderTimeout string   `mapstructure:"provider_timeout"`
}

// AnalyzerConfig defines behavior analysis settings
type AnalyzerConfig struct {
	Interval      string `mapstructure:"interval"`
	ConsoleReport bool   `mapstructure:"console_report"`
	HistorySize   int    `mapstructure:"history_size"`
}

// ClassifyConfig defines the category table source. The table lives in
// its own YAML file rather than inline here: app identifiers are
// case-sensitive and config keys are not.
type ClassifyConfig struct {
	TableFile string `mapstructure:"table_file"` // YAML file with a categories mapping, reloadable
	Watch     bool   `mapstructure:"watch"`      // reload table_file on change
}

// DaylogConfig defines daily log persistence
type DaylogConfig struct {
	Dir              string `mapstructure:"dir"`
	RolloverEnabled  bool   `mapstructure:"rollover_enabled"`
	RolloverBoundary string `mapstructure:"rollover_boundary"` // HH:MM local time
}

// MetricsConfig defines the metrics endpoint
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BindAddress string `mapstructure:"bind_address"`
	Port        int    `mapstructure:"port"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("FOCUSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Sampler defaults
	v.SetDefault("sampler.interval", "5s")
	v.SetDefault("sampler.provider_command", "")
	v.SetDefault("sampler.provider_args", []string{})
	v.SetDefault("sampler.provider_timeout", "2s")

	// Analyzer defaults
	v.SetDefault("analyzer.interval", "30s")
	v.SetDefault("analyzer.console_report", true)
	v.SetDefault("analyzer.history_size", 64)

	// Classification defaults
	v.SetDefault("classification.table_file", "")
	v.SetDefault("classification.watch", false)

	// Daily log defaults
	v.SetDefault("daily_log.dir", "logs")
	v.SetDefault("daily_log.rollover_enabled", true)
	v.SetDefault("daily_log.rollover_boundary", "00:00")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.bind_address", "127.0.0.1")
	v.SetDefault("metrics.port", 9217)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if _, err := time.ParseDuration(cfg.Sampler.Interval); err != nil {
		return fmt.Errorf("invalid sampler interval: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Analyzer.Interval); err != nil {
		return fmt.Errorf("invalid analyzer interval: %w", err)
	}

	if cfg.Daylog.Dir == "" {
		return fmt.Errorf("daily log directory is required")
	}
	if cfg.Daylog.RolloverEnabled {
		if _, err := time.Parse("15:04", cfg.Daylog.RolloverBoundary); err != nil {
			return fmt.Errorf("invalid rollover boundary %q (want HH:MM): %w", cfg.Daylog.RolloverBoundary, err)
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", cfg.Metrics.Port)
		}
	}

	if cfg.Classify.Watch && cfg.Classify.TableFile == "" {
		return fmt.Errorf("classification.watch requires classification.table_file")
	}

	return nil
}
