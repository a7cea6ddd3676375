// Package view derives what the task list shows from the stored collection.
//
// Everything here is a pure function of its inputs: the collection passed in
// is never modified, and results are recomputed on every call.
package view

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// StatusFilters lists the status filters in cycle order.
func StatusFilters() []StatusFilter {
	return []StatusFilter{StatusAll, StatusActive, StatusCompleted}
}

// ParseStatusFilter parses a status filter name. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusCompleted:
		return f, nil
	}
	return "", fmt.Errorf("invalid status filter %q, must be one of: all, active, completed", s)
}

// Next returns the following filter, wrapping around.
func (f StatusFilter) Next() StatusFilter {
	switch f {
	case StatusAll:
		return StatusActive
	case StatusActive:
		return StatusCompleted
	default:
		return StatusAll
	}
}

func (f StatusFilter) match(t todo.Task) bool {
	switch f {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// PriorityFilter selects tasks by priority. PriorityAll matches every task.
type PriorityFilter string

// PriorityAll disables priority filtering.
const PriorityAll PriorityFilter = "all"

// PriorityFilters lists the priority filters in cycle order.
func PriorityFilters() []PriorityFilter {
	out := []PriorityFilter{PriorityAll}
	for _, p := range todo.Priorities() {
		out = append(out, PriorityFilter(p))
	}
	return out
}

// ParsePriorityFilter parses "all" or a priority name. Empty means all.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == string(PriorityAll) {
		return PriorityAll, nil
	}
	p, err := todo.ParsePriority(v)
	if err != nil {
		return "", fmt.Errorf("invalid priority filter %q, must be one of: all, low, medium, high", s)
	}
	return PriorityFilter(p), nil
}

// Next returns the following filter: all, low, medium, high, then all again.
func (f PriorityFilter) Next() PriorityFilter {
	filters := PriorityFilters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return PriorityAll
}

func (f PriorityFilter) match(t todo.Task) bool {
	if f == PriorityAll || f == "" {
		return true
	}
	return t.Priority == todo.Priority(f)
}

// Visible returns the tasks that pass every filter, newest first.
//
// The search text is sanitized and lowercased; when non-empty it must be a
// substring of the lowercased task text. Tasks with equal CreatedAt keep
// their input order.
func Visible(items []todo.Task, status StatusFilter, priority PriorityFilter, search string) []todo.Task {
	needle := strings.ToLower(todo.Sanitize(search))

	out := make([]todo.Task, 0, len(items))
	for _, t := range items {
		if !status.match(t) || !priority.match(t) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// ActiveCount returns the number of tasks not yet completed.
func ActiveCount(items []todo.Task) int {
	n := 0
	for _, t := range items {
		if !t.Completed {
			n++
		}
	}
	return n
}

// CompletionPercentage returns the share of completed tasks as a whole
// percentage in [0, 100]. An empty list is 0.
func CompletionPercentage(items []todo.Task) int {
	if len(items) == 0 {
		return 0
	}
	done := len(items) - ActiveCount(items)
	return int(math.Round(100 * float64(done) / float64(len(items))))
}

// Query bundles the view parameters.
type Query struct {
	Status   StatusFilter
	Priority PriorityFilter
	Search   string
}

// Apply returns Visible(items, q.Status, q.Priority, q.Search).
func (q Query) Apply(items []todo.Task) []todo.Task {
	return Visible(items, q.Status, q.Priority, q.Search)
}

// IsFiltered reports whether the query hides anything.
func (q Query) IsFiltered() bool {
	return (q.Status != StatusAll && q.Status != "") ||
		(q.Priority != PriorityAll && q.Priority != "") ||
		todo.Sanitize(q.Search) != ""
}

// Stats summarizes a collection.
type Stats struct {
	Total      int `json:"total" yaml:"total"`
	Active     int `json:"active" yaml:"active"`
	Completed  int `json:"completed" yaml:"completed"`
	Percentage int `json:"percentage" yaml:"percentage"`
}

// Summarize computes Stats for items.
func Summarize(items []todo.Task) Stats {
	active := ActiveCount(items)
	return Stats{
		Total:      len(items),
		Active:     active,
		Completed:  len(items) - active,
		Percentage: CompletionPercentage(items),
	}
}
