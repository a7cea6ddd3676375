// Package storage implements keyed-blob storage backends. Each backend maps
// a string key to an opaque byte value, the way a browser's local storage
// does; the task list is stored as one JSON blob under one key.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Backend defines the interface for storage backends.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// Kinds lists the supported backend kinds.
func Kinds() []Kind {
	return []Kind{KindFile, KindSQLite, KindMemory}
}

// ParseKind parses a backend name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindFile, KindSQLite, KindMemory:
		return k, nil
	}
	return "", fmt.Errorf("invalid storage backend %q, must be one of: file, sqlite, memory", s)
}

// SQLiteFileName is the database file name used by Open for KindSQLite.
const SQLiteFileName = "tasklist.db"

// Open creates a backend of the given kind rooted at dir.
func Open(kind Kind, dir string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return NewFileStorage(dir)
	case KindSQLite:
		return NewSQLiteStorage(SQLitePath(dir))
	case KindMemory:
		return NewMemoryStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", kind)
}

// Location describes where a backend of the given kind keeps key.
func Location(kind Kind, dir, key string) string {
	switch kind {
	case KindSQLite:
		return fmt.Sprintf("%s (key %q)", SQLitePath(dir), key)
	case KindMemory:
		return "memory (not persisted)"
	}
	return keyPath(dir, key)
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is empty")
	}
	return nil
}
