package config

import (
	"flag"
)

// parseFlags defines the global flags on fs and parses args. If sources is
// non-nil, it records SourceFlag for every flag given explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend (file, sqlite, memory)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key for the task list")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file (default <data-dir>/tasklist.log)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources == nil {
		return nil
	}
	flagToSource := map[string]string{
		"storage":    "storage",
		"data-dir":   "data_dir",
		"key":        "storage_key",
		"log-level":  "log_level",
		"log-format": "log_format",
		"log-file":   "log_file",
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToSource[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
