package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasklist-go/internal/store"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeConfirmClear
)

// Options configures the interactive model.
type Options struct {
	// Query is the initial filter state.
	Query view.Query

	// DefaultPriority is preselected for new tasks.
	DefaultPriority todo.Priority

	// TickInterval is how often the clock and relative times refresh.
	TickInterval time.Duration

	// Now overrides the clock.
	Now func() time.Time

	// Location describes where the list is stored, for the footer.
	Location string
}

// Model is the bubbletea model for the task list. It never changes the
// collection itself; every mutation goes through the store.
type Model struct {
	store    *store.Store
	query    view.Query
	draft    todo.Priority
	defPrio  todo.Priority
	cursor   int
	mode     mode
	input    textinput.Model
	editID   string
	status   string
	warn     bool
	showHelp bool
	location string

	now          time.Time
	clock        func() time.Time
	tickInterval time.Duration
}

type tickMsg time.Time

// NewModel creates a model over st. The store should already be loaded.
func NewModel(st *store.Store, opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Query.Status == "" {
		opts.Query.Status = view.StatusAll
	}
	if opts.Query.Priority == "" {
		opts.Query.Priority = view.PriorityAll
	}

	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 50

	prio := todo.NormalizePriority(opts.DefaultPriority)
	return &Model{
		store:        st,
		query:        opts.Query,
		draft:        prio,
		defPrio:      prio,
		input:        ti,
		location:     opts.Location,
		now:          opts.Now(),
		clock:        opts.Now,
		tickInterval: opts.TickInterval,
		status:       "Press a to add a task, ? for help.",
	}
}

// Query returns the current filter state.
func (m *Model) Query() view.Query {
	return m.query
}

// Visible returns the tasks currently shown.
func (m *Model) Visible() []todo.Task {
	return m.query.Apply(m.store.Items())
}

// Status returns the last status line.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirmClear:
			return m.updateConfirmClear(msg)
		}
		return m.updateList(msg)
	case tickMsg:
		m.now = m.clock()
		return m, tickCmd(m.tickInterval)
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-20, 10)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.Visible()) - 1
		m.clampCursor()
	case "a", "n":
		m.mode = modeAdd
		m.draft = m.defPrio
		m.input.Reset()
		m.input.Placeholder = "What needs doing?"
		m.setStatus("Type a task, tab to change priority, enter to save, esc to cancel.")
		return m, m.input.Focus()
	case "e", "enter":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = task.ID
		m.draft = task.Priority
		m.input.SetValue(task.Text)
		m.input.CursorEnd()
		m.setStatus("Editing. Enter to save, esc to cancel.")
		return m, m.input.Focus()
	case " ", "x":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.store.Toggle(task.ID)
		if task.Completed {
			m.setStatus("Marked active: " + task.Text)
		} else {
			m.setStatus("Completed: " + task.Text)
		}
		m.clampCursor()
	case "d", "delete":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.store.Delete(task.ID)
		m.setStatus("Deleted: " + task.Text)
		m.clampCursor()
	case "p":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		next := task.Priority.Next()
		m.store.Update(task.ID, todo.Patch{Priority: &next})
		m.setStatus(fmt.Sprintf("Priority %s: %s", next, task.Text))
		m.clampCursor()
	case "1":
		m.setStatusFilter(view.StatusAll)
	case "2":
		m.setStatusFilter(view.StatusActive)
	case "3":
		m.setStatusFilter(view.StatusCompleted)
	case "f":
		m.setStatusFilter(m.query.Status.Next())
	case "tab":
		m.query.Priority = m.query.Priority.Next()
		m.cursor = 0
		m.setStatus("Priority filter: " + string(m.query.Priority))
	case "0":
		m.query = view.Query{Status: view.StatusAll, Priority: view.PriorityAll}
		m.cursor = 0
		m.setStatus("Filters cleared")
	case "/":
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.SetValue(m.query.Search)
		m.input.CursorEnd()
		m.setStatus("Type to search, enter to keep, esc to clear.")
		return m, m.input.Focus()
	case "esc":
		if m.query.Search != "" {
			m.query.Search = ""
			m.cursor = 0
			m.setStatus("Search cleared")
		}
	case "C":
		if m.store.Len() == 0 {
			m.setStatus("Nothing to clear")
			return m, nil
		}
		m.mode = modeConfirmClear
		m.warn = true
		m.status = fmt.Sprintf("Delete all %d tasks? y/n", m.store.Len())
	case "h", "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput()
		m.setStatus("Cancelled")
		return m, nil
	case "tab":
		m.draft = m.draft.Next()
		return m, nil
	case "enter":
		if m.mode == modeAdd {
			return m.submitAdd()
		}
		return m.submitEdit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitAdd() (tea.Model, tea.Cmd) {
	task, ok := m.store.Create(m.input.Value(), m.draft)
	if !ok {
		m.setStatus("Nothing to add")
		return m, nil
	}
	m.leaveInput()
	m.cursor = 0
	for i, t := range m.Visible() {
		if t.ID == task.ID {
			m.cursor = i
			m.setStatus("Added: " + task.Text)
			return m, nil
		}
	}
	m.setStatus("Added (hidden by filters): " + task.Text)
	return m, nil
}

func (m *Model) submitEdit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	prio := m.draft
	patch := todo.Patch{Priority: &prio}
	if todo.Sanitize(text) != "" {
		patch.Text = &text
	}
	id := m.editID
	m.leaveInput()
	if !m.store.Update(id, patch) {
		m.setStatus("Task no longer exists")
		return m, nil
	}
	if patch.Text == nil {
		m.setStatus("Text unchanged: empty text ignored")
	} else {
		m.setStatus("Saved")
	}
	m.clampCursor()
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.query.Search = ""
		m.leaveInput()
		m.setStatus("Search cleared")
		return m, nil
	case "enter":
		m.leaveInput()
		if m.query.Search == "" {
			m.setStatus("")
		} else {
			m.setStatus(fmt.Sprintf("%d matching", len(m.Visible())))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.query.Search = m.input.Value()
	m.cursor = 0
	return m, cmd
}

func (m *Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	switch msg.String() {
	case "y", "Y":
		n := m.store.Len()
		m.store.Clear()
		m.cursor = 0
		m.setStatus(fmt.Sprintf("Cleared %d tasks", n))
	default:
		m.setStatus("Clear cancelled")
	}
	return m, nil
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.editID = ""
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.warn = false
}

func (m *Model) setStatusFilter(f view.StatusFilter) {
	m.query.Status = f
	m.cursor = 0
	m.setStatus("Showing " + string(f))
}

func (m *Model) selected() (todo.Task, bool) {
	visible := m.Visible()
	if len(visible) == 0 {
		return todo.Task{}, false
	}
	m.clampCursor()
	return visible[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) View() string {
	var b strings.Builder
	m.writeHeader(&b)

	if m.showHelp {
		writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	}

	items := m.store.Items()
	visible := m.query.Apply(items)
	writeSummary(&b, items, m.query)
	m.writeList(&b, visible, len(items))
	m.writeInput(&b)
	m.writeStatus(&b)
	m.writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) writeHeader(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("  ")
	b.WriteString(clockStyle.Render(formatClock(m.now)))
	b.WriteString("\n\n")
}

func writeSummary(b *strings.Builder, items []todo.Task, q view.Query) {
	s := view.Summarize(items)
	b.WriteString(fmt.Sprintf("  %d active  %d done  %d%% complete\n", s.Active, s.Completed, s.Percentage))
	filters := fmt.Sprintf("  Showing: %s  Priority: %s", q.Status, q.Priority)
	if q.Search != "" {
		filters += fmt.Sprintf("  Search: %q", todo.Sanitize(q.Search))
	}
	b.WriteString(dimStyle.Render(filters))
	b.WriteString("\n\n")
}

func (m *Model) writeList(b *strings.Builder, visible []todo.Task, total int) {
	if len(visible) == 0 {
		if total == 0 {
			b.WriteString("  No tasks yet.\n\n")
		} else {
			b.WriteString("  No tasks match the current filters.\n\n")
		}
		return
	}
	for i, t := range visible {
		line := formatTask(t, m.now)
		if i == m.cursor && m.mode == modeList {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func formatTask(t todo.Task, now time.Time) string {
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = "[x]"
		text = doneStyle.Render(text)
	}
	age := dimStyle.Render(RelativeTime(t.Created(), now))
	return fmt.Sprintf("%s %s %s  %s", check, priorityBadge(t.Priority), text, age)
}

func (m *Model) writeInput(b *strings.Builder) {
	switch m.mode {
	case modeAdd:
		b.WriteString(fmt.Sprintf("  New [%s] ", m.draft))
	case modeEdit:
		b.WriteString(fmt.Sprintf("  Edit [%s] ", m.draft))
	case modeSearch:
		b.WriteString("  Search ")
	default:
		return
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
}

func (m *Model) writeStatus(b *strings.Builder) {
	if m.status == "" {
		return
	}
	style := statusStyle
	if m.warn {
		style = warnStyle
	}
	b.WriteString(style.Render(m.status))
	b.WriteString("\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  a, n         Add a task (tab cycles priority)\n")
	b.WriteString("  e, enter     Edit the selected task\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  p            Cycle priority of the selected task\n")
	b.WriteString("  d, delete    Delete the selected task\n")
	b.WriteString("  j/k, arrows  Move\n")
	b.WriteString("  1 / 2 / 3    Show all / active / completed\n")
	b.WriteString("  f            Cycle status filter\n")
	b.WriteString("  tab          Cycle priority filter\n")
	b.WriteString("  /            Search (esc clears)\n")
	b.WriteString("  0            Clear filters\n")
	b.WriteString("  C            Clear all tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func (m *Model) writeFooter(b *strings.Builder) {
	footer := "Press ? for help | q to quit"
	if m.location != "" {
		footer += " | " + m.location
	}
	b.WriteString(footerStyle.Render(footer))
	b.WriteString("\n")
}
