package config

import (
	"time"

	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/view"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, lowest priority first.
	Files []string

	// Unknown lists keys present in config files that no field consumed.
	Unknown []string
}

// Default values.
const (
	DefaultStorage        = storage.KindFile
	DefaultDataDir        = "~/.tasklist"
	DefaultStorageKey     = "tasklist.v1"
	DefaultTickIntervalMS = 1000
	DefaultLogFileName    = "tasklist.log"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Storage
	Storage    string `toml:"storage"`
	DataDir    string `toml:"data_dir"`
	StorageKey string `toml:"storage_key"`

	// Defaults applied by the UI
	DefaultPriority       string `toml:"default_priority"`
	DefaultStatusFilter   string `toml:"default_status_filter"`
	DefaultPriorityFilter string `toml:"default_priority_filter"`

	// Clock refresh for the TUI
	TickIntervalMS int `toml:"tick_interval_ms"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxBackups int    `toml:"log_max_backups"`
}

// StorageKind returns the configured backend kind.
func (c *Config) StorageKind() storage.Kind {
	k, err := storage.ParseKind(c.Storage)
	if err != nil {
		return DefaultStorage
	}
	return k
}

// Priority returns the default priority for new tasks.
func (c *Config) Priority() todo.Priority {
	p, err := todo.ParsePriority(c.DefaultPriority)
	if err != nil {
		return todo.DefaultPriority
	}
	return p
}

// Query returns the initial view query.
func (c *Config) Query() view.Query {
	q := view.Query{Status: view.StatusAll, Priority: view.PriorityAll}
	if s, err := view.ParseStatusFilter(c.DefaultStatusFilter); err == nil {
		q.Status = s
	}
	if p, err := view.ParsePriorityFilter(c.DefaultPriorityFilter); err == nil {
		q.Priority = p
	}
	return q
}

// TickInterval returns the TUI clock refresh interval.
func (c *Config) TickInterval() time.Duration {
	if c.TickIntervalMS <= 0 {
		return DefaultTickIntervalMS * time.Millisecond
	}
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
