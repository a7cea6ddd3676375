package todo

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the current envelope schema version. Stored blobs with any
// other version are discarded on load.
const SchemaVersion = 1

// Envelope is the versioned wrapper persisted under a single storage key.
type Envelope struct {
	SchemaVersion int    `json:"schemaVersion"`
	Items         []Task `json:"items"`
}

// NewEnvelope returns an empty envelope at the current schema version.
func NewEnvelope() Envelope {
	return Envelope{
		SchemaVersion: SchemaVersion,
		Items:         []Task{},
	}
}

// Decode parses an envelope from JSON. It does not validate; callers run a
// Validator first.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Items == nil {
		env.Items = []Task{}
	}
	for i := range env.Items {
		env.Items[i].Priority = NormalizePriority(env.Items[i].Priority)
	}
	return env, nil
}

// Encode marshals the envelope with 2-space indentation and a trailing
// newline.
func (e Envelope) Encode() ([]byte, error) {
	if e.Items == nil {
		e.Items = []Task{}
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return append(data, '\n'), nil
}

// Clone returns a deep copy of the envelope.
func (e Envelope) Clone() Envelope {
	items := make([]Task, len(e.Items))
	copy(items, e.Items)
	return Envelope{SchemaVersion: e.SchemaVersion, Items: items}
}

// GetTask returns a task by ID, or nil if not found.
func (e *Envelope) GetTask(id string) *Task {
	for i := range e.Items {
		if e.Items[i].ID == id {
			return &e.Items[i]
		}
	}
	return nil
}

// indexOf returns the position of the task with id, or -1.
func (e *Envelope) indexOf(id string) int {
	for i := range e.Items {
		if e.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Prepend inserts a task at the front of the list.
func (e *Envelope) Prepend(task Task) {
	items := make([]Task, 0, len(e.Items)+1)
	items = append(items, task)
	e.Items = append(items, e.Items...)
}

// Remove deletes the task with id. It returns false if no task matched.
func (e *Envelope) Remove(id string) bool {
	i := e.indexOf(id)
	if i < 0 {
		return false
	}
	e.Items = append(e.Items[:i:i], e.Items[i+1:]...)
	return true
}
