package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Storage backend: file, sqlite, or memory
storage = "file"

# Data directory (supports ~ and $VAR expansion)
data_dir = "~/.tasklist"

# Key the task list is stored under
storage_key = "tasklist.v1"

# Priority for new tasks: low, medium, or high
default_priority = "medium"

# Initial filters: all, active, completed / all, low, medium, high
default_status_filter = "all"
default_priority_filter = "all"

# Clock refresh interval for the interactive UI (milliseconds)
tick_interval_ms = 1000

# Logging (the interactive UI owns the terminal, so logs go to a file)
log_level = "info"
log_format = "text"
# log_file = "~/.tasklist/tasklist.log"
log_timestamps = true
log_max_size_mb = 10
log_max_backups = 3
`
}
