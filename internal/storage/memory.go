package storage

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned by a MemoryStorage configured to fail.
var ErrUnavailable = errors.New("storage unavailable")

// MemoryStorage is an in-memory storage backend. It can be told to fail
// reads or writes, which is how tests exercise quota and outage paths.
type MemoryStorage struct {
	values     map[string][]byte
	failReads  bool
	failWrites bool
	writes     int
	mu         sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

// Get returns a copy of the value for key.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failReads {
		return nil, ErrUnavailable
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (m *MemoryStorage) Set(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return ErrUnavailable
	}
	m.values[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return ErrUnavailable
	}
	delete(m.values, key)
	return nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}

// FailReads makes subsequent Get calls return ErrUnavailable.
func (m *MemoryStorage) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = fail
}

// FailWrites makes subsequent Set and Delete calls return ErrUnavailable.
func (m *MemoryStorage) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Writes returns the number of successful Set calls.
func (m *MemoryStorage) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
