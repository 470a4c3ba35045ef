package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/dayflow/internal/habit"
	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/task"
)

// Snapshot is every persisted collection in its stored shape.
type Snapshot struct {
	Tasks            []task.Task        `json:"tasks"`
	Habits           []habit.Habit      `json:"habits"`
	PomodoroSettings pomodoro.Settings  `json:"pomodoroSettings"`
	PomodoroSessions []pomodoro.Session `json:"pomodoroSessions"`
}

type jsonExport struct {
	ExportedAt string `json:"exportedAt"`
	Snapshot
}

// ToJSON writes a pretty-printed backup of snap to path.
func ToJSON(snap Snapshot, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Snapshot:   snap,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FromJSON reads a backup written by ToJSON.
func FromJSON(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json file: %w", err)
	}
	var export jsonExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	if export.PomodoroSettings == (pomodoro.Settings{}) {
		export.PomodoroSettings = pomodoro.DefaultSettings()
	}
	if err := export.PomodoroSettings.Validate(); err != nil {
		return nil, err
	}
	return &export.Snapshot, nil
}
