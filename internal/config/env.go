package config

import (
	"os"
	"strconv"
	"strings"
)

// envBinding maps one TASKLIST_* variable onto a config field.
type envBinding struct {
	name  string
	field string
	apply func(cfg *Config, v string) bool
}

func envBindings() []envBinding {
	str := func(set func(*Config, string)) func(*Config, string) bool {
		return func(cfg *Config, v string) bool {
			set(cfg, v)
			return true
		}
	}
	return []envBinding{
		{"TASKLIST_STORAGE", "storage", str(func(c *Config, v string) { c.Storage = v })},
		{"TASKLIST_DATA_DIR", "data_dir", str(func(c *Config, v string) { c.DataDir = v })},
		{"TASKLIST_STORAGE_KEY", "storage_key", str(func(c *Config, v string) { c.StorageKey = v })},
		{"TASKLIST_DEFAULT_PRIORITY", "default_priority", str(func(c *Config, v string) { c.DefaultPriority = v })},
		{"TASKLIST_LOG_LEVEL", "log_level", str(func(c *Config, v string) { c.LogLevel = v })},
		{"TASKLIST_LOG_FORMAT", "log_format", str(func(c *Config, v string) { c.LogFormat = v })},
		{"TASKLIST_LOG_FILE", "log_file", str(func(c *Config, v string) { c.LogFile = v })},
		{"TASKLIST_LOG_TIMESTAMPS", "log_timestamps", str(func(c *Config, v string) { c.LogTimestamps = boolFromString(v) })},
		{"TASKLIST_TICK_MS", "tick_interval_ms", func(c *Config, v string) bool {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return false
			}
			c.TickIntervalMS = i
			return true
		}},
	}
}

// loadFromEnv overrides config from environment variables. If sources is
// non-nil, it records SourceEnv for every field that was set.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, b := range envBindings() {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		if b.apply(cfg, v) && sources != nil {
			sources[b.field] = SourceEnv
		}
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
