// Package config provides configuration management for vagrant using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServiceEndpoint = "local"
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultClientTimeout   = 30 * time.Second
	defaultSyncCron        = "0 */5 * * * *"
)

// Config holds all configuration for the application.
type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Triggers TriggersConfig `mapstructure:"triggers"`
}

// ServiceConfig holds state-service client configuration.
type ServiceConfig struct {
	// Endpoint identifies the state service. The value "local" selects the
	// embedded database-backed service.
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds database connection configuration for the embedded
// state service.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// StorageConfig holds data directory configuration.
type StorageConfig struct {
	// BaseDir is the root of the basis data directory.
	BaseDir string `mapstructure:"base_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// SyncConfig holds periodic state synchronization configuration.
type SyncConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cron is a 6-field cron expression (sec min hour dom month dow).
	Cron string `mapstructure:"cron"`
}

// TriggersConfig holds trigger hook configuration keyed by middleware name.
type TriggersConfig struct {
	// Before maps a middleware's stable name to commands run before it.
	Before map[string][]string `mapstructure:"before"`
	// After maps a middleware's stable name to commands run after it.
	After map[string][]string `mapstructure:"after"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with VAGRANT_ and use underscores for
// nesting. Example: VAGRANT_DATABASE_DRIVER=sqlite.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	SetDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/vagrant")
		v.AddConfigPath("$HOME/.vagrant")
	}

	// Environment variable settings
	v.SetEnvPrefix("VAGRANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Service defaults
	v.SetDefault("service.endpoint", defaultServiceEndpoint)
	v.SetDefault("service.timeout", defaultClientTimeout)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "vagrant.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Storage defaults
	v.SetDefault("storage.base_dir", "./data")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Sync defaults
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.cron", defaultSyncCron)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Service.Endpoint == "" {
		return fmt.Errorf("service.endpoint is required")
	}

	// Database validation
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	// Storage validation
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	// Logging validation
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Local reports whether the embedded state service should be used.
func (c *ServiceConfig) Local() bool {
	return c.Endpoint == defaultServiceEndpoint
}

// Default returns a Config populated with defaults only. It is used when
// configuration loading fails and the caller recovers with a stub config.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	// Unmarshaling defaults cannot fail; the zero Config is the fallback.
	_ = v.Unmarshal(&cfg)
	return &cfg
}
