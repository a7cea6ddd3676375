package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/todo"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	clockStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("243"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255"))

	priorityStyles = map[todo.Priority]lipgloss.Style{
		todo.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("109")),
		todo.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		todo.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
)

// priorityBadge renders a fixed-width priority label.
func priorityBadge(p todo.Priority) string {
	label := map[todo.Priority]string{
		todo.PriorityLow:    "low ",
		todo.PriorityMedium: "med ",
		todo.PriorityHigh:   "high",
	}[p]
	if label == "" {
		label = "    "
	}
	return priorityStyles[p].Render(label)
}
