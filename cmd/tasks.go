package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist-go/internal/store"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
	"github.com/nibzard/tasklist-go/internal/view"
)

// shortIDLen is how many id characters the list shows.
const shortIDLen = 8

// Output formats for ls and stats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q, must be one of: text, json, yaml", s)
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// resolve maps a user-supplied id or prefix to a task. It prints a notice
// and returns false when nothing unique matches.
func resolve(s *session, st *store.Store, ref string) (todo.Task, bool) {
	id, ok := st.Resolve(ref)
	if !ok {
		fmt.Fprintf(s.out, "No unique task matches %q\n", ref)
		return todo.Task{}, false
	}
	task, ok := st.Get(id)
	return task, ok
}

func addCommand(ctx context.Context, s *session, st *store.Store) error {
	fs := flag.NewFlagSet("tasklist add", flag.ContinueOnError)
	prio := fs.String("p", string(s.cfg.Priority()), "Priority (low|medium|high)")
	if err := fs.Parse(s.args); err != nil {
		return err
	}
	priority, err := todo.ParsePriority(*prio)
	if err != nil {
		return err
	}

	task, ok := st.Create(strings.Join(fs.Args(), " "), priority)
	if !ok {
		fmt.Fprintln(s.out, "Nothing to add: task text is empty")
		return nil
	}
	fmt.Fprintf(s.out, "Added %s [%s] %s\n", shortID(task.ID), task.Priority, task.Text)
	return nil
}

func lsCommand(ctx context.Context, s *session, st *store.Store) error {
	q := s.cfg.Query()
	fs := flag.NewFlagSet("tasklist ls", flag.ContinueOnError)
	status := fs.String("status", string(q.Status), "Filter by status (all|active|completed)")
	priority := fs.String("priority", string(q.Priority), "Filter by priority (all|low|medium|high)")
	search := fs.String("q", "", "Case-insensitive text search")
	format := fs.String("format", formatText, "Output format (text|json|yaml)")
	if err := fs.Parse(s.args); err != nil {
		return err
	}

	var err error
	if q.Status, err = view.ParseStatusFilter(*status); err != nil {
		return err
	}
	if q.Priority, err = view.ParsePriorityFilter(*priority); err != nil {
		return err
	}
	q.Search = *search
	outFormat, err := parseFormat(*format)
	if err != nil {
		return err
	}

	items := st.Items()
	visible := q.Apply(items)
	switch outFormat {
	case formatJSON:
		return writeJSON(s.out, visible)
	case formatYAML:
		return writeYAML(s.out, visible)
	}
	writeTaskTable(s.out, items, visible, q, time.Now())
	return nil
}

// writeTaskTable prints visible tasks followed by a summary of all items.
func writeTaskTable(w io.Writer, items, visible []todo.Task, q view.Query, now time.Time) {
	r := lipgloss.NewRenderer(w)
	dim := r.NewStyle().Foreground(lipgloss.Color("8"))
	done := r.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	prioStyles := map[todo.Priority]lipgloss.Style{
		todo.PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		todo.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("11")),
		todo.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}

	if len(visible) == 0 {
		if len(items) == 0 {
			fmt.Fprintln(w, "No tasks yet.")
		} else {
			fmt.Fprintln(w, "No tasks match the current filters.")
		}
	}
	for _, task := range visible {
		check := "[ ]"
		text := task.Text
		if task.Completed {
			check = "[x]"
			text = done.Render(text)
		}
		prio := prioStyles[task.Priority].Render(fmt.Sprintf("%-6s", task.Priority))
		fmt.Fprintf(w, "%s %s %s %s %s\n",
			check,
			dim.Render(shortID(task.ID)),
			prio,
			text,
			dim.Render("("+ui.RelativeTime(task.Created(), now)+")"),
		)
	}

	stats := view.Summarize(items)
	summary := fmt.Sprintf("%d active  %d done  %d%% complete", stats.Active, stats.Completed, stats.Percentage)
	if q.IsFiltered() {
		summary += fmt.Sprintf("  (showing %d of %d)", len(visible), stats.Total)
	}
	fmt.Fprintln(w, dim.Render(summary))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func toggleCommand(ctx context.Context, s *session, st *store.Store) error {
	if len(s.args) != 1 {
		return fmt.Errorf("usage: tasklist toggle <id>")
	}
	task, ok := resolve(s, st, s.args[0])
	if !ok {
		return nil
	}
	st.Toggle(task.ID)
	task, _ = st.Get(task.ID)
	if task.Completed {
		fmt.Fprintf(s.out, "Completed %s %s\n", shortID(task.ID), task.Text)
	} else {
		fmt.Fprintf(s.out, "Reopened %s %s\n", shortID(task.ID), task.Text)
	}
	return nil
}

func rmCommand(ctx context.Context, s *session, st *store.Store) error {
	if len(s.args) != 1 {
		return fmt.Errorf("usage: tasklist rm <id>")
	}
	task, ok := resolve(s, st, s.args[0])
	if !ok {
		return nil
	}
	st.Delete(task.ID)
	fmt.Fprintf(s.out, "Deleted %s %s\n", shortID(task.ID), task.Text)
	return nil
}

func editCommand(ctx context.Context, s *session, st *store.Store) error {
	fs := flag.NewFlagSet("tasklist edit", flag.ContinueOnError)
	text := fs.String("text", "", "New text")
	prio := fs.String("p", "", "New priority (low|medium|high)")
	done := fs.String("done", "", "Completion state (true|false)")

	// Accept the id either before or after the flags.
	args := s.args
	ref := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		ref, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ref == "" && fs.NArg() > 0 {
		ref = fs.Arg(0)
	}
	if ref == "" {
		return fmt.Errorf("usage: tasklist edit <id> [-text text] [-p priority] [-done true|false]")
	}

	var patch todo.Patch
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["text"] {
		patch.Text = text
	}
	if set["p"] {
		p, err := todo.ParsePriority(*prio)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if set["done"] {
		completed, err := strconv.ParseBool(*done)
		if err != nil {
			return fmt.Errorf("invalid -done value %q: %w", *done, err)
		}
		patch.Completed = &completed
	}

	task, ok := resolve(s, st, ref)
	if !ok {
		return nil
	}
	if patch.Text != nil && todo.Sanitize(*patch.Text) == "" {
		fmt.Fprintln(s.out, "Text unchanged: empty text ignored")
	}
	st.Update(task.ID, patch)
	task, _ = st.Get(task.ID)
	state := "active"
	if task.Completed {
		state = "done"
	}
	fmt.Fprintf(s.out, "Saved %s [%s, %s] %s\n", shortID(task.ID), task.Priority, state, task.Text)
	return nil
}

func clearCommand(ctx context.Context, s *session, st *store.Store) error {
	fs := flag.NewFlagSet("tasklist clear", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Confirm deleting every task")
	if err := fs.Parse(s.args); err != nil {
		return err
	}
	n := st.Len()
	if n == 0 {
		fmt.Fprintln(s.out, "Nothing to clear")
		return nil
	}
	if !*yes {
		return fmt.Errorf("refusing to delete %d tasks without -yes", n)
	}
	st.Clear()
	fmt.Fprintf(s.out, "Cleared %d tasks\n", n)
	return nil
}

func statsCommand(ctx context.Context, s *session, st *store.Store) error {
	fs := flag.NewFlagSet("tasklist stats", flag.ContinueOnError)
	format := fs.String("format", formatText, "Output format (text|json|yaml)")
	if err := fs.Parse(s.args); err != nil {
		return err
	}
	outFormat, err := parseFormat(*format)
	if err != nil {
		return err
	}

	stats := view.Summarize(st.Items())
	switch outFormat {
	case formatJSON:
		return writeJSON(s.out, stats)
	case formatYAML:
		return writeYAML(s.out, stats)
	}
	fmt.Fprintf(s.out, "Total:     %d\n", stats.Total)
	fmt.Fprintf(s.out, "Active:    %d\n", stats.Active)
	fmt.Fprintf(s.out, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(s.out, "Complete:  %d%%\n", stats.Percentage)
	return nil
}
