package cmd

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// doctorCommand checks the configuration and the stored task list. It only
// reads from storage.
func doctorCommand(s *session) error {
	fs := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(s.args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := s.out
	cfg := s.cfg

	fmt.Fprintln(w, "Tasklist Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if len(s.cws.Files) == 0 {
		fmt.Fprintln(w, "  ✅ Files: none (using defaults)")
	}
	for _, path := range s.cws.Files {
		fmt.Fprintf(w, "  ✅ File: %s\n", path)
	}
	for _, key := range s.cws.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key: %s\n", key)
	}
	fmt.Fprintf(w, "  ✅ Storage: %s\n", cfg.Storage)
	fmt.Fprintf(w, "  ✅ Data dir: %s\n", cfg.DataDir)
	fmt.Fprintf(w, "  ✅ Key: %s\n", cfg.StorageKey)
	fmt.Fprintf(w, "  ✅ Default priority: %s\n", cfg.Priority())
	fmt.Fprintf(w, "  ✅ Log: %s (%s, %s)\n", cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if *verbose {
		fmt.Fprintln(w, "  Sources:")
		for _, field := range s.cws.SortedFields() {
			fmt.Fprintf(w, "    %s: %s\n", field, s.cws.Sources[field])
		}
	}
	fmt.Fprintln(w)

	// Storage
	fmt.Fprintf(w, "Storage: %s\n", storage.Location(cfg.StorageKind(), cfg.DataDir, cfg.StorageKey))
	if !checkStorage(s) {
		allOK = false
	}
	fmt.Fprintln(w)

	if !allOK {
		fmt.Fprintln(w, "❌ Some checks failed")
		return fmt.Errorf("doctor checks failed")
	}
	fmt.Fprintln(w, "✅ All checks passed")
	return nil
}

func checkStorage(s *session) bool {
	w := s.out
	cfg := s.cfg

	backend, err := storage.Open(cfg.StorageKind(), cfg.DataDir)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Open: %v\n", err)
		return false
	}
	defer backend.Close()
	fmt.Fprintln(w, "  ✅ Open: OK")

	data, err := backend.Get(cfg.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(w, "  ✅ Task list: not created yet")
		return true
	}
	if err != nil {
		fmt.Fprintf(w, "  ❌ Read: %v\n", err)
		return false
	}

	result := todo.NewValidator().Validate(data)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Task list: invalid, it will load as empty")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %s\n", strings.TrimSpace(e.Error()))
		}
		return false
	}

	env, err := todo.Decode(data)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Task list: %v\n", err)
		return false
	}
	done := 0
	for _, task := range env.Items {
		if task.Completed {
			done++
		}
	}
	fmt.Fprintf(w, "  ✅ Task list: schema v%d, %d tasks (%d done)\n", env.SchemaVersion, len(env.Items), done)
	return true
}
