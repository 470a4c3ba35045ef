package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/task"
)

// StatsCmd prints per-day focus totals
type StatsCmd struct {
	Days int `help:"Number of days to show, ending today" default:"7"`
}

type dayStats struct {
	date      string
	sessions  int
	pomodoros int
	work      int // minutes
	breaks    int // minutes
	tasksDone int
	tasks     int
}

// Run executes the stats command
func (s *StatsCmd) Run(cli *CLI) error {
	if s.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	days := collectStats(w.focus.Sessions(), w.tasks, time.Now(), s.Days)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Sessions", "Pomodoros", "Focus", "Break", "Tasks")
	var total dayStats
	for _, d := range days {
		t.Row(d.date, strconv.Itoa(d.sessions), strconv.Itoa(d.pomodoros),
			formatMinutes(d.work), formatMinutes(d.breaks), fmt.Sprintf("%d/%d", d.tasksDone, d.tasks))
		total.sessions += d.sessions
		total.pomodoros += d.pomodoros
		total.work += d.work
		total.breaks += d.breaks
		total.tasksDone += d.tasksDone
		total.tasks += d.tasks
	}
	t.Row("Total", strconv.Itoa(total.sessions), strconv.Itoa(total.pomodoros),
		formatMinutes(total.work), formatMinutes(total.breaks), fmt.Sprintf("%d/%d", total.tasksDone, total.tasks))

	fmt.Fprintln(cli.out, t.Render())
	return nil
}

// collectStats buckets sessions by the local date they started on. The
// result runs oldest first and ends at now.
func collectStats(sessions []pomodoro.Session, tasks *task.Ledger, now time.Time, n int) []dayStats {
	days := make([]dayStats, n)
	idx := make(map[string]int, n)
	for i := range days {
		key := now.AddDate(0, 0, i-n+1).Format(dateLayout)
		days[i].date = key
		idx[key] = i
		for _, t := range tasks.ByDate(key) {
			days[i].tasks++
			if t.Completed {
				days[i].tasksDone++
			}
		}
	}
	for _, sess := range sessions {
		i, ok := idx[sess.StartTime.Local().Format(dateLayout)]
		if !ok {
			continue
		}
		days[i].sessions++
		days[i].pomodoros += sess.CompletedPomodoros
		days[i].work += sess.TotalWorkTime
		days[i].breaks += sess.TotalBreakTime
	}
	return days
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
