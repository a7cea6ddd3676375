package todo

import (
	"fmt"
	"strings"
	"time"
)

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned when no valid priority is given.
const DefaultPriority = PriorityMedium

// Priorities lists the valid priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next returns the following priority, wrapping from high back to low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// ParsePriority parses a priority name. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q, must be one of: low, medium, high", s)
	}
	return p, nil
}

// NormalizePriority returns p if it is valid, otherwise DefaultPriority.
func NormalizePriority(p Priority) Priority {
	if p.Valid() {
		return p
	}
	return DefaultPriority
}

// Task represents a single task record.
type Task struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	Completed bool     `json:"completed" yaml:"completed"`
	Priority  Priority `json:"priority" yaml:"priority"`
	CreatedAt int64    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt int64    `json:"updatedAt" yaml:"updatedAt"`
}

// Created returns the creation time.
func (t *Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Patch is a partial update. A nil field means "no change".
type Patch struct {
	Text      *string
	Completed *bool
	Priority  *Priority
}

// Apply applies the patch to t and stamps UpdatedAt with now. UpdatedAt
// never moves backwards, even if the clock does.
// Text is sanitized first; a text patch that sanitizes to empty is ignored.
// An invalid priority is ignored.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Text != nil {
		if text := Sanitize(*p.Text); text != "" {
			t.Text = text
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	t.UpdatedAt = max(t.UpdatedAt, now.UnixMilli())
}

// Sanitize replaces invalid UTF-8 with U+FFFD, collapses every run of
// whitespace to a single space and trims the result.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(strings.ToValidUTF8(s, "\uFFFD")), " ")
}
