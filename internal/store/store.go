// Package store owns the canonical task list and keeps it in sync with a
// storage backend.
//
// The Store is the only writer of the list. Every mutation rewrites the whole
// envelope under one key. Persistence is best effort: a blob that is
// missing, unreadable, or fails validation loads as an empty list, and a
// failed write leaves the in-memory list authoritative. Neither case is
// reported to callers; both are logged at warn level.
package store

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "tasklist.v1"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed storage failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides task id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithValidator sets the envelope validator applied on load.
func WithValidator(v *todo.Validator) Option {
	return func(s *Store) {
		if v != nil {
			s.validator = v
		}
	}
}

// Store holds the authoritative envelope for one storage key.
type Store struct {
	backend   storage.Backend
	key       string
	env       todo.Envelope
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
	validator *todo.Validator
}

// New creates a Store over backend. The in-memory list starts empty; call
// Load to read the persisted state.
func New(backend storage.Backend, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		backend: backend,
		key:     key,
		env:     todo.NewEnvelope(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		now:     time.Now,
		newID:   todo.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = todo.NewValidator()
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load reads the envelope from storage and makes it the in-memory state.
// A missing key, a read or parse failure, or a blob that fails validation
// all yield a fresh empty envelope at the current schema version.
func (s *Store) Load() todo.Envelope {
	s.env = s.read()
	return s.env.Clone()
}

func (s *Store) read() todo.Envelope {
	data, err := s.backend.Get(s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("no stored task list, starting empty", "key", s.key)
		} else {
			s.logger.Warn("read failed, starting empty", "key", s.key, "err", err)
		}
		return todo.NewEnvelope()
	}

	result := s.validator.Validate(data)
	for _, w := range result.Warnings {
		s.logger.Debug(w, "key", s.key)
	}
	if !result.Valid {
		s.logger.Warn("stored task list is invalid, starting empty", "key", s.key, "err", result.Err())
		return todo.NewEnvelope()
	}

	env, err := todo.Decode(data)
	if err != nil {
		s.logger.Warn("stored task list is unreadable, starting empty", "key", s.key, "err", err)
		return todo.NewEnvelope()
	}
	s.logger.Debug("loaded task list", "key", s.key, "items", len(env.Items))
	return env
}

// Persist writes env under the store's key. Failures are logged and
// otherwise ignored; there is no retry.
func (s *Store) Persist(env todo.Envelope) {
	data, err := env.Encode()
	if err != nil {
		s.logger.Warn("encode failed, keeping in-memory state", "key", s.key, "err", err)
		return
	}
	if err := s.backend.Set(s.key, data); err != nil {
		s.logger.Warn("write failed, keeping in-memory state", "key", s.key, "err", err)
		return
	}
	s.logger.Debug("persisted task list", "key", s.key, "items", len(env.Items))
}

// Items returns a copy of the current list.
func (s *Store) Items() []todo.Task {
	return s.env.Clone().Items
}

// Snapshot returns a copy of the current envelope.
func (s *Store) Snapshot() todo.Envelope {
	return s.env.Clone()
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.env.Items)
}

// Get returns the task with id.
func (s *Store) Get(id string) (todo.Task, bool) {
	if task := s.env.GetTask(id); task != nil {
		return *task, true
	}
	return todo.Task{}, false
}

// Resolve maps ref to a task id. An exact id match wins; otherwise ref must
// be a prefix of exactly one id.
func (s *Store) Resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if s.env.GetTask(ref) != nil {
		return ref, true
	}
	match := ""
	for _, task := range s.env.Items {
		if strings.HasPrefix(task.ID, ref) {
			if match != "" {
				return "", false
			}
			match = task.ID
		}
	}
	return match, match != ""
}

// Create sanitizes rawText and, if anything is left, prepends a new task and
// persists. Empty text is a no-op and returns false. An invalid priority is
// stored as todo.DefaultPriority.
func (s *Store) Create(rawText string, priority todo.Priority) (todo.Task, bool) {
	text := todo.Sanitize(rawText)
	if text == "" {
		return todo.Task{}, false
	}

	now := s.now().UnixMilli()
	task := todo.Task{
		ID:        s.uniqueID(),
		Text:      text,
		Completed: false,
		Priority:  todo.NormalizePriority(priority),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.env.Prepend(task)
	s.logger.Info("created task", "id", task.ID, "priority", task.Priority)
	s.Persist(s.env)
	return task, true
}

// uniqueID draws ids until one is not already in the list.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.env.GetTask(id) == nil {
			return id
		}
		s.logger.Warn("generated id collided, retrying", "id", id)
	}
}

// Update applies patch to the task with id, stamps UpdatedAt, and persists.
// It returns false if no task matches.
func (s *Store) Update(id string, patch todo.Patch) bool {
	task := s.env.GetTask(id)
	if task == nil {
		s.logger.Debug("update ignored, no such task", "id", id)
		return false
	}
	patch.Apply(task, s.now())
	s.logger.Info("updated task", "id", id, "completed", task.Completed, "priority", task.Priority)
	s.Persist(s.env)
	return true
}

// Toggle flips the completion flag of the task with id.
func (s *Store) Toggle(id string) bool {
	task := s.env.GetTask(id)
	if task == nil {
		s.logger.Debug("toggle ignored, no such task", "id", id)
		return false
	}
	completed := !task.Completed
	return s.Update(id, todo.Patch{Completed: &completed})
}

// Delete removes the task with id and persists. It returns false if no task
// matches.
func (s *Store) Delete(id string) bool {
	if !s.env.Remove(id) {
		s.logger.Debug("delete ignored, no such task", "id", id)
		return false
	}
	s.logger.Info("deleted task", "id", id)
	s.Persist(s.env)
	return true
}

// Clear removes every task and persists. Callers confirm intent first.
func (s *Store) Clear() {
	n := len(s.env.Items)
	s.env = todo.NewEnvelope()
	s.logger.Info("cleared task list", "removed", n)
	s.Persist(s.env)
}
