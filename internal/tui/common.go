package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewHabits
	viewFocus
	viewStats
	viewSettings
)

var viewNames = []string{"Today", "Habits", "Focus", "Stats", "Settings"}

const dateLayout = "2006-01-02"

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

// errCmd reports a failed engine action in the footer.
func errCmd(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return statusCmd(fmt.Sprintf("Error: %v", err), true)
}

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekDates returns the seven days of the week containing ref, beginning
// on first.
func weekDates(ref time.Time, first time.Weekday) []time.Time {
	day := startOfDay(ref)
	back := (int(day.Weekday()) - int(first) + 7) % 7
	start := day.AddDate(0, 0, -back)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func dateKeys(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = dateKey(d)
	}
	return out
}

// formatClock renders a countdown as MM:SS.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
