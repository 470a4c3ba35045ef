// Package export writes the stored collections to CSV and JSON files and
// reads JSON backups back in.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/dayflow/internal/task"
)

type Format int

const (
	FormatCSV Format = iota
	FormatJSON
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

// Write saves snap into dir under dated file names and returns the paths
// written, the primary file first. CSV produces a sessions file and a tasks
// file; JSON produces one backup file.
func Write(snap Snapshot, format Format, dir string, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	date := now.Format("2006-01-02")

	switch format {
	case FormatCSV:
		byID := make(map[string]task.Task, len(snap.Tasks))
		for _, t := range snap.Tasks {
			byID[t.ID] = t
		}
		sessions := filepath.Join(dir, fmt.Sprintf("dayflow-sessions-%s.csv", date))
		if err := SessionsToCSV(snap.PomodoroSessions, byID, sessions); err != nil {
			return nil, err
		}
		tasks := filepath.Join(dir, fmt.Sprintf("dayflow-tasks-%s.csv", date))
		if err := TasksToCSV(snap.Tasks, tasks); err != nil {
			return nil, err
		}
		return []string{sessions, tasks}, nil
	case FormatJSON:
		path := filepath.Join(dir, fmt.Sprintf("dayflow-backup-%s.json", date))
		if err := ToJSON(snap, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("unknown export format %d", format)
}
