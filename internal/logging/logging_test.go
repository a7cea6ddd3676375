package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{" warn ", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestParseLogFormatter(t *testing.T) {
	tests := []struct {
		input string
		want  log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"JSON", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogFormatter(tt.input))
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasklist.log")
	opts := OptionsFromStrings("debug", "json", path, false, 1, 1)

	logger, closer := New(opts)
	logger.Info("created task", "id", "abc")
	logger.Debug("persisted task list", "items", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "log:\n%s", data)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry), "log line is not JSON")
	assert.Equal(t, "created task", entry["msg"])
	assert.Equal(t, "abc", entry["id"])
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, OptionsFromStrings("warn", "text", Stderr, false, 0, -1))
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewTestLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTest(&buf)
	logger.Debug("loaded task list", "items", 3)

	assert.Contains(t, buf.String(), "loaded task list")
	assert.Contains(t, buf.String(), "items=3")
}

func TestOptionsFromStringsKeepsDefaults(t *testing.T) {
	opts := OptionsFromStrings("", "", "", true, 0, -1)
	def := DefaultOptions()
	assert.Equal(t, def.MaxSizeMB, opts.MaxSizeMB)
	assert.Equal(t, def.MaxBackups, opts.MaxBackups)
	assert.Equal(t, "tasklist", opts.Prefix)
}

func TestNewStderr(t *testing.T) {
	logger, closer := New(DefaultOptions())
	require.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
