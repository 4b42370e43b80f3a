package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the top-level configuration struct for seorec.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
	Writer   WriterConfig   `mapstructure:"writer"`
}

// DatabaseConfig locates and tunes the SQLite store.
type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig holds CLI output settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// WriterConfig holds write-path settings.
type WriterConfig struct {
	// SchemaGuard refuses saves into files older than the current schema.
	SchemaGuard bool `mapstructure:"schema_guard"`
}

// Default values.
const (
	DefaultDatabasePath = "seorec.db"
	DefaultBusyTimeout  = 5 * time.Second
	DefaultLogLevel     = "info"
	DefaultOutputFormat = "text"
	DefaultSchemaGuard  = true
)

var (
	// ErrEmptyDatabasePath indicates database.path is blank.
	ErrEmptyDatabasePath = errors.New("database.path must not be empty")
	// ErrInvalidBusyTimeout indicates database.busy_timeout is negative.
	ErrInvalidBusyTimeout = errors.New("database.busy_timeout must be non-negative")
	// ErrInvalidLogLevel indicates log.level is not a known level.
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
	// ErrInvalidOutputFormat indicates output.format is not json or text.
	ErrInvalidOutputFormat = errors.New("output.format must be json or text")
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return ErrEmptyDatabasePath
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBusyTimeout, c.Database.BusyTimeout)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Output.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format)
	}
	return nil
}

// SlogLevel returns the configured log level. Validate must have passed.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.Log.Level)
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
}
