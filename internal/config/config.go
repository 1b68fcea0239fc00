// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Common errors
var (
	Err = errors.New("config error")
)

// Config represents the application configuration
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`

	// ConfigFilePath stores the path to the loaded config file (not marshaled from YAML)
	ConfigFilePath string `mapstructure:"-"`
}

// ScanConfig bounds the concurrent header scan
type ScanConfig struct {
	PoolSize       int `mapstructure:"pool_size"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	HeaderRowLimit int `mapstructure:"header_row_limit"`
}

// CacheConfig controls the persistent header cache
type CacheConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	File          string `mapstructure:"file"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// OutputConfig contains output path settings
type OutputConfig struct {
	ReportsDir string `mapstructure:"reports_dir"`
}

// LogConfig controls the injected logger
type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/logsieve")
		v.AddConfigPath("/etc/logsieve")
	}

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := v.ConfigFileUsed()
			if configFile == "" {
				configFile = configPath
			}
			return nil, fmt.Errorf("error reading config file from %s: %w", configFile, err)
		}
		// Config file not found; using defaults and env vars
	}

	// Environment variable support
	v.SetEnvPrefix("LOGSIEVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		configFile := v.ConfigFileUsed()
		if configFile == "" {
			configFile = "(using defaults and environment variables)"
		}
		return nil, fmt.Errorf("error unmarshaling config from %s: %w", configFile, err)
	}

	// Store the config file path in the struct (DI approach, no global state)
	cfg.ConfigFilePath = v.ConfigFileUsed()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		configFile := v.ConfigFileUsed()
		if configFile == "" {
			configFile = "(using defaults and environment variables)"
		}
		return nil, fmt.Errorf("config validation failed for %s: %w", configFile, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Scan defaults
	v.SetDefault("scan.pool_size", 8)
	v.SetDefault("scan.timeout_seconds", 86400)
	v.SetDefault("scan.header_row_limit", 100)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.file", "./headercache.json")
	v.SetDefault("cache.retention_days", 30)

	// Output defaults
	v.SetDefault("output.reports_dir", "./reports")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate ensures all required fields are set and values are within valid ranges.
func (c *Config) Validate() error {
	configSource := c.ConfigFilePath
	if configSource == "" {
		configSource = "(defaults/environment)"
	}

	if c.Scan.PoolSize < 1 {
		return fmt.Errorf("scan.pool_size must be at least 1, got %d in config %s",
			c.Scan.PoolSize, configSource)
	}
	if c.Scan.TimeoutSeconds < 1 {
		return fmt.Errorf("scan.timeout_seconds must be positive, got %d in config %s",
			c.Scan.TimeoutSeconds, configSource)
	}
	if c.Scan.HeaderRowLimit < 1 {
		return fmt.Errorf("scan.header_row_limit must be at least 1, got %d in config %s",
			c.Scan.HeaderRowLimit, configSource)
	}
	if c.Cache.RetentionDays < 1 || c.Cache.RetentionDays > 365 {
		return fmt.Errorf("cache.retention_days must be between 1 and 365, got %d in config %s",
			c.Cache.RetentionDays, configSource)
	}
	if c.Cache.Enabled && c.Cache.File == "" {
		return fmt.Errorf("cache.file is required when the cache is enabled in config %s", configSource)
	}
	if c.Output.ReportsDir == "" {
		return fmt.Errorf("output.reports_dir is required in config %s", configSource)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q in config %s",
			c.Log.Format, configSource)
	}

	return nil
}
