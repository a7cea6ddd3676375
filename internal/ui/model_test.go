package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/store"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/view"
)

var baseTime = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// newTestModel returns a model over an empty in-memory store whose clock
// advances one second per call.
func newTestModel(t *testing.T) (*Model, *store.Store) {
	t.Helper()
	now := baseTime
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	st := store.New(storage.NewMemoryStorage(), store.DefaultKey, store.WithClock(clock))
	st.Load()
	m := NewModel(st, Options{
		DefaultPriority: todo.PriorityMedium,
		Now:             func() time.Time { return baseTime.Add(time.Hour) },
		Location:        "memory",
	})
	return m, st
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func texts(tasks []todo.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}

func TestAddTask(t *testing.T) {
	m, st := newTestModel(t)

	press(m, "a", "  Buy   milk ", "tab", "enter")

	items := st.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Buy milk", items[0].Text)
	assert.Equal(t, todo.PriorityHigh, items[0].Priority)
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Added: Buy milk", m.Status())
}

func TestAddEmptyIsNoop(t *testing.T) {
	m, st := newTestModel(t)

	press(m, "a", "   ", "enter")

	assert.Zero(t, st.Len())
	assert.Equal(t, modeAdd, m.mode)
	assert.Equal(t, "Nothing to add", m.Status())

	press(m, "esc")
	assert.Equal(t, modeList, m.mode, "esc should leave add mode")
}

func TestAddModeCapturesKeys(t *testing.T) {
	m, st := newTestModel(t)

	press(m, "a", "q")
	require.Equal(t, modeAdd, m.mode)
	assert.Equal(t, "q", m.input.Value())

	press(m, "enter")
	assert.Equal(t, 1, st.Len())
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	assert.True(t, isQuit(press(m, "q")), "q should quit in list mode")

	m, _ = newTestModel(t)
	press(m, "a")
	assert.True(t, isQuit(press(m, "ctrl+c")), "ctrl+c should quit from any mode")
}

func TestToggleDeletePriority(t *testing.T) {
	m, st := newTestModel(t)
	milk, _ := st.Create("Buy milk", todo.PriorityLow)
	report, _ := st.Create("Write report", todo.PriorityHigh)

	// Newest first: the cursor starts on "Write report".
	press(m, "space")
	got, _ := st.Get(report.ID)
	assert.True(t, got.Completed, "space should toggle the selected task")

	press(m, "j", "p")
	got, _ = st.Get(milk.ID)
	assert.Equal(t, todo.PriorityMedium, got.Priority, "p should cycle low to medium")

	press(m, "d")
	_, ok := st.Get(milk.ID)
	assert.False(t, ok, "d should delete the selected task")
	assert.Equal(t, 0, m.cursor, "cursor after deleting the last row")

	press(m, "x")
	got, _ = st.Get(report.ID)
	assert.False(t, got.Completed, "x should toggle back to active")
}

func TestActionsOnEmptyList(t *testing.T) {
	m, st := newTestModel(t)
	for _, k := range []string{"space", "d", "p", "e", "j", "k", "G"} {
		press(m, k)
	}
	assert.Zero(t, st.Len())
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, modeList, m.mode)
}

func TestCursorBounds(t *testing.T) {
	m, st := newTestModel(t)
	for _, text := range []string{"a", "b", "c"} {
		st.Create(text, todo.PriorityLow)
	}

	press(m, "k")
	assert.Equal(t, 0, m.cursor)
	press(m, "j", "j", "j", "j")
	assert.Equal(t, 2, m.cursor)
	press(m, "g")
	assert.Equal(t, 0, m.cursor)
	press(m, "G")
	assert.Equal(t, 2, m.cursor)
}

func TestFilters(t *testing.T) {
	m, st := newTestModel(t)
	milk, _ := st.Create("Buy milk", todo.PriorityLow)
	st.Create("Write report", todo.PriorityHigh)
	st.Toggle(milk.ID)

	tests := []struct {
		keys []string
		want []string
	}{
		{[]string{"2"}, []string{"Write report"}},
		{[]string{"3"}, []string{"Buy milk"}},
		{[]string{"1"}, []string{"Write report", "Buy milk"}},
		{[]string{"f"}, []string{"Write report"}},
		{[]string{"0", "tab"}, []string{"Buy milk"}},
		{[]string{"tab", "tab"}, []string{"Write report"}},
		{[]string{"tab"}, []string{"Write report", "Buy milk"}},
	}
	for _, tt := range tests {
		press(m, tt.keys...)
		assert.Equal(t, tt.want, texts(m.Visible()), "after %v", tt.keys)
	}
	assert.Equal(t, view.PriorityAll, m.Query().Priority, "priority filter should wrap to all")
}

func TestSearch(t *testing.T) {
	m, st := newTestModel(t)
	st.Create("Buy milk", todo.PriorityLow)
	st.Create("Write report", todo.PriorityHigh)

	press(m, "/", "MILK")
	require.Equal(t, modeSearch, m.mode)
	assert.Equal(t, []string{"Buy milk"}, texts(m.Visible()), "live search")

	press(m, "enter")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "MILK", m.Query().Search, "enter should keep the search")

	press(m, "esc")
	assert.Empty(t, m.Query().Search, "esc should clear the search")
	assert.Len(t, m.Visible(), 2)
}

func TestEdit(t *testing.T) {
	m, st := newTestModel(t)
	task, _ := st.Create("Buy milk", todo.PriorityLow)

	press(m, "e")
	require.Equal(t, modeEdit, m.mode)
	require.Equal(t, "Buy milk", m.input.Value(), "edit mode should be prefilled")
	press(m, " today", "tab", "enter")

	got, _ := st.Get(task.ID)
	assert.Equal(t, "Buy milk today", got.Text)
	assert.Equal(t, todo.PriorityMedium, got.Priority)
	assert.Greater(t, got.UpdatedAt, task.UpdatedAt, "edit should stamp UpdatedAt")
}

func TestEditEmptyKeepsText(t *testing.T) {
	m, st := newTestModel(t)
	task, _ := st.Create("Buy milk", todo.PriorityLow)

	press(m, "enter", "ctrl+u", "enter")

	got, _ := st.Get(task.ID)
	assert.Equal(t, "Buy milk", got.Text)
	assert.Contains(t, m.Status(), "unchanged")
}

func TestClearConfirm(t *testing.T) {
	m, st := newTestModel(t)
	st.Create("a", todo.PriorityLow)
	st.Create("b", todo.PriorityLow)

	press(m, "C")
	require.Equal(t, modeConfirmClear, m.mode)
	press(m, "n")
	assert.Equal(t, 2, st.Len(), "declined clear removed tasks")

	press(m, "C", "y")
	assert.Zero(t, st.Len())
	assert.Equal(t, "Cleared 2 tasks", m.Status())

	press(m, "C")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Nothing to clear", m.Status())
}

func TestTickAdvancesClockOnly(t *testing.T) {
	m, st := newTestModel(t)
	st.Create("a", todo.PriorityLow)
	before := st.Items()

	tick := baseTime.Add(2 * time.Hour)
	m.clock = func() time.Time { return tick }
	_, cmd := m.Update(tickMsg(tick))
	assert.NotNil(t, cmd, "tick should schedule the next tick")
	assert.True(t, m.now.Equal(tick), "now: got %v, want %v", m.now, tick)
	assert.Equal(t, before, st.Items(), "tick must not touch the collection")
	assert.Contains(t, m.View(), formatClock(tick))
}

func TestView(t *testing.T) {
	m, st := newTestModel(t)
	assert.Contains(t, m.View(), "No tasks yet.")

	milk, _ := st.Create("Buy milk", todo.PriorityLow)
	st.Create("Write report", todo.PriorityHigh)
	st.Toggle(milk.ID)

	out := m.View()
	for _, want := range []string{"Write report", "Buy milk", "1 active", "50% complete", "[x]", "[ ]", "59m ago", "memory"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Write report"), strings.Index(out, "Buy milk"), "newest task should be listed first")

	press(m, "2", "/", "milk", "enter")
	assert.Contains(t, m.View(), "No tasks match")

	press(m, "?")
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		then time.Time
		want string
	}{
		{now.Add(time.Minute), "just now"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
		{now.Add(-10 * 24 * time.Hour), "Feb 29"},
		{time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), "Dec 25, 2023"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(tt.then, now))
		})
	}
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&strings.Builder{}), "a strings.Builder is not a terminal")
}
