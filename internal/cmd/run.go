package cmd

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/dayflow/internal/tui"
)

// RunCmd starts the TUI application
type RunCmd struct {
	ExportDir string `help:"Directory the TUI exports into (default: home directory)" type:"path"`
}

// Run executes the TUI
func (r *RunCmd) Run(cli *CLI) error {
	w, err := cli.open()
	if err != nil {
		return err
	}
	defer w.Close()

	app := tui.NewApp(tui.Options{
		Store:        w.store,
		Tasks:        w.tasks,
		Habits:       w.habits,
		Focus:        w.focus,
		Logger:       cli.logger,
		FirstWeekday: cli.cfg.FirstWeekday(),
		ExportDir:    r.ExportDir,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
