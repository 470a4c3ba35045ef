package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/task"
)

// SessionsToCSV writes one row per finished focus session. tasks resolves
// the linked task's title.
func SessionsToCSV(sessions []pomodoro.Session, tasks map[string]task.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Task", "Start", "End", "Duration", "Pomodoros", "Work (min)", "Break (min)"}); err != nil {
		return err
	}

	for _, s := range sessions {
		taskName := ""
		if s.TaskID != "" {
			taskName = "Unknown"
			if t, ok := tasks[s.TaskID]; ok {
				taskName = t.Title
			}
		}
		endStr := ""
		dur := ""
		if !s.EndTime.IsZero() {
			endStr = s.EndTime.Local().Format(time.RFC3339)
			dur = formatDuration(int64(s.EndTime.Sub(s.StartTime).Seconds()))
		}

		row := []string{
			s.ID,
			taskName,
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			dur,
			strconv.Itoa(s.CompletedPomodoros),
			strconv.Itoa(s.TotalWorkTime),
			strconv.Itoa(s.TotalBreakTime),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// TasksToCSV writes one row per task.
func TasksToCSV(tasks []task.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Date", "Title", "Priority", "Category", "Recurrence", "Completed", "Streak"}); err != nil {
		return err
	}
	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Date,
			t.Title,
			string(t.Priority),
			string(t.Category),
			string(t.Recurrence),
			strconv.FormatBool(t.Completed),
			strconv.Itoa(t.Streak),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
