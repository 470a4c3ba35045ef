package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/sadopc/dayflow/internal/export"
	"github.com/sadopc/dayflow/internal/store"
)

var errCancelled = errors.New("cancelled")

// ExportCmd writes the stored data to files
type ExportCmd struct {
	Format string `help:"Output format: csv or json" enum:"csv,json" default:"csv" short:"f"`
	Out    string `help:"Output directory (default: home directory)" type:"path" short:"o"`
}

// Run executes the export command
func (e *ExportCmd) Run(cli *CLI) error {
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	dir := e.Out
	if dir == "" {
		if dir, err = os.UserHomeDir(); err != nil {
			return err
		}
	}

	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	snap := export.Snapshot{
		Tasks:            w.tasks.List(),
		Habits:           w.habits.List(),
		PomodoroSettings: w.focus.Settings(),
		PomodoroSessions: w.focus.Sessions(),
	}
	paths, err := export.Write(snap, format, dir, time.Now())
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cli.out, "Exported to %s\n", p)
	}
	cli.logger.Info("exported", "paths", paths)
	return nil
}

// ImportCmd restores a JSON backup
type ImportCmd struct {
	File string `arg:"" help:"Backup file written by 'dayflow export --format json'" type:"existingfile"`
	Yes  bool   `help:"Replace the current data without asking" short:"y"`
}

// Run executes the import command
func (i *ImportCmd) Run(cli *CLI) error {
	snap, err := export.FromJSON(i.File)
	if err != nil {
		return err
	}
	if !i.Yes {
		if err := confirm("Replace all current data with this backup?"); err != nil {
			return err
		}
	}

	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := restore(w.store, snap); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Imported %d tasks, %d habits and %d focus sessions\n",
		len(snap.Tasks), len(snap.Habits), len(snap.PomodoroSessions))
	cli.logger.Info("imported", "file", i.File)
	return nil
}

// restore overwrites every document with the backup's collections.
func restore(s *store.Store, snap *export.Snapshot) error {
	docs := []struct {
		key string
		v   any
	}{
		{store.KeyTasks, orEmpty(snap.Tasks)},
		{store.KeyHabits, orEmpty(snap.Habits)},
		{store.KeyPomodoroSettings, snap.PomodoroSettings},
		{store.KeyPomodoroSessions, orEmpty(snap.PomodoroSessions)},
	}
	for _, d := range docs {
		if err := s.SetJSON(d.key, d.v); err != nil {
			return fmt.Errorf("restore %s: %w", d.key, err)
		}
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ClearCmd wipes user data
type ClearCmd struct {
	Yes bool `help:"Delete without asking" short:"y"`
}

// Run executes the clear command
func (c *ClearCmd) Run(cli *CLI) error {
	if !c.Yes {
		if err := confirm("Delete all tasks, habits and focus history?"); err != nil {
			return err
		}
	}

	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.store.ClearUserData(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "All data cleared. Pomodoro settings were kept.")
	cli.logger.Info("user data cleared")
	return nil
}

// confirm asks on the terminal and returns errCancelled on "no".
func confirm(title string) error {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description("This cannot be undone.").
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}
	return nil
}
