package ui

import (
	"fmt"
	"time"
)

// RelativeTime describes then relative to now, e.g. "just now", "5m ago",
// "3h ago", "2d ago". Anything a week or older is shown as a date. Times in
// the future count as just now.
func RelativeTime(then, now time.Time) string {
	d := now.Sub(then)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	if then.Year() == now.Year() {
		return then.Format("Jan 2")
	}
	return then.Format("Jan 2, 2006")
}

// formatClock renders the header clock.
func formatClock(now time.Time) string {
	return now.Format("Mon Jan 2 15:04:05")
}
