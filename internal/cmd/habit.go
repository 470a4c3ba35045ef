package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/dayflow/internal/habit"
)

const dateLayout = "2006-01-02"

// HabitCmd groups the habit subcommands
type HabitCmd struct {
	List HabitListCmd `cmd:"" help:"List habits with their streaks" default:"1"`
	Log  HabitLogCmd  `cmd:"" help:"Mark a habit done (or not done) for a day"`
}

// HabitListCmd prints every habit
type HabitListCmd struct{}

// Run executes the habit list command
func (h *HabitListCmd) Run(cli *CLI) error {
	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	habits := w.habits.List()
	if len(habits) == 0 {
		fmt.Fprintln(cli.out, "No habits yet.")
		return nil
	}

	now := time.Now()
	today := now.Format(dateLayout)
	week := weekKeys(now, cli.cfg.FirstWeekday())

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Habit", "Category", "This week", "Streak", "Longest", "Today")
	for _, hb := range habits {
		done := ""
		if hb.CompletedOn(today) {
			done = "✓"
		}
		t.Row(
			hb.Name,
			hb.Category,
			fmt.Sprintf("%d/%d", hb.WeekCompletions(week), hb.Frequency),
			strconv.Itoa(hb.CurrentStreak),
			strconv.Itoa(hb.LongestStreak),
			done,
		)
	}
	fmt.Fprintln(cli.out, t.Render())
	return nil
}

// HabitLogCmd records one day for a habit
type HabitLogCmd struct {
	Name string `arg:"" help:"Habit name (case-insensitive)"`
	Date string `help:"Day to log as YYYY-MM-DD (default: today)"`
	Undo bool   `help:"Record the day as not done"`
}

// Run executes the habit log command
func (h *HabitLogCmd) Run(cli *CLI) error {
	date := h.Date
	if date == "" {
		date = time.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}

	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	hb, err := findHabit(w.habits.List(), h.Name)
	if err != nil {
		return err
	}
	if err := w.habits.LogCompletion(hb.ID, date, !h.Undo); err != nil {
		return err
	}

	hb, _ = w.habits.Get(hb.ID)
	fmt.Fprintf(cli.out, "%s: %d day streak (longest %d)\n", hb.Name, hb.CurrentStreak, hb.LongestStreak)
	return nil
}

func findHabit(habits []habit.Habit, name string) (habit.Habit, error) {
	var matches []habit.Habit
	for _, hb := range habits {
		if strings.EqualFold(hb.Name, name) {
			matches = append(matches, hb)
		}
	}
	switch len(matches) {
	case 0:
		return habit.Habit{}, fmt.Errorf("no habit named %q", name)
	case 1:
		return matches[0], nil
	}
	return habit.Habit{}, fmt.Errorf("%d habits are named %q", len(matches), name)
}

// weekKeys returns the date keys of the week containing ref.
func weekKeys(ref time.Time, first time.Weekday) []string {
	offset := (int(ref.Weekday()) - int(first) + 7) % 7
	start := ref.AddDate(0, 0, -offset)
	keys := make([]string, 7)
	for i := range keys {
		keys[i] = start.AddDate(0, 0, i).Format(dateLayout)
	}
	return keys
}
