package config

import (
	"bytes"
	"flag"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/view"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasklist/tasklist.toml or OS-specific config dir)
// 3. Project config file (tasklist.toml or .tasklist.toml in current directory)
// 4. Environment variables
// 5. CLI flags
//
// Flag parsing stops at the first non-flag argument; the rest is available
// from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := cws.loadFile(path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := cws.loadFile(path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"storage",
		"data_dir",
		"storage_key",
		"default_priority",
		"default_status_filter",
		"default_priority_filter",
		"tick_interval_ms",
		"log_level",
		"log_format",
		"log_file",
		"log_timestamps",
		"log_max_size_mb",
		"log_max_backups",
	}
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) (toml.MetaData, error) {
	return toml.DecodeFile(path, cfg)
}

// loadFile decodes path over the current config and marks every key the file
// defines as coming from source.
func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := loadConfigFile(cws.Config, path)
	if err != nil {
		return err
	}
	cws.Files = append(cws.Files, path)
	for _, field := range configFields() {
		if md.IsDefined(field) {
			cws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, path+": "+key.String())
	}
	return nil
}

// GetConfigFile returns the highest-priority config file that was read, or
// an empty string if none was.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// SortedFields returns the tracked field names in alphabetical order.
func (cws *ConfigWithSources) SortedFields() []string {
	fields := make([]string, 0, len(cws.Sources))
	for f := range cws.Sources {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Storage = string(DefaultStorage)
	cfg.DataDir = DefaultDataDir
	cfg.StorageKey = DefaultStorageKey
	cfg.DefaultPriority = string(todo.DefaultPriority)
	cfg.DefaultStatusFilter = string(view.StatusAll)
	cfg.DefaultPriorityFilter = string(view.PriorityAll)
	cfg.TickIntervalMS = DefaultTickIntervalMS

	// Logging defaults
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	cfg.LogFile = ""
	cfg.LogTimestamps = true
	cfg.LogMaxSizeMB = DefaultLogMaxSizeMB
	cfg.LogMaxBackups = DefaultLogMaxBackups
}

// finalizeConfig computes derived values and validates enumerated settings.
func finalizeConfig(cfg *Config) error {
	kind, err := storage.ParseKind(cfg.Storage)
	if err != nil {
		return err
	}
	cfg.Storage = string(kind)

	// Expand ~ in paths
	cfg.DataDir = expandPath(cfg.DataDir)
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, DefaultLogFileName)
	}
	cfg.LogFile = expandPath(cfg.LogFile)

	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}

	p, err := todo.ParsePriority(cfg.DefaultPriority)
	if err != nil {
		return fmt.Errorf("default_priority: %w", err)
	}
	cfg.DefaultPriority = string(p)

	s, err := view.ParseStatusFilter(cfg.DefaultStatusFilter)
	if err != nil {
		return fmt.Errorf("default_status_filter: %w", err)
	}
	cfg.DefaultStatusFilter = string(s)

	pf, err := view.ParsePriorityFilter(cfg.DefaultPriorityFilter)
	if err != nil {
		return fmt.Errorf("default_priority_filter: %w", err)
	}
	cfg.DefaultPriorityFilter = string(pf)

	if cfg.TickIntervalMS <= 0 {
		cfg.TickIntervalMS = DefaultTickIntervalMS
	}
	if cfg.LogMaxSizeMB <= 0 {
		cfg.LogMaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.LogMaxBackups < 0 {
		cfg.LogMaxBackups = 0
	}
	return nil
}
