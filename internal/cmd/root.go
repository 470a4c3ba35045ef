// Package cmd defines the dayflow command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sadopc/dayflow/internal/config"
	"github.com/sadopc/dayflow/internal/habit"
	"github.com/sadopc/dayflow/internal/logging"
	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/store"
	"github.com/sadopc/dayflow/internal/task"
)

const defaultMaxLogFiles = 1000

// CLI represents the command-line interface structure
type CLI struct {
	Config      string `help:"Path to the YAML config file" env:"DAYFLOW_CONFIG" type:"path"`
	DB          string `name:"db" help:"Path to the SQLite database" env:"DAYFLOW_DB" type:"path"`
	Debug       bool   `help:"Enable debug logging to file" short:"d"`
	DebugFile   string `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int    `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Run    RunCmd    `cmd:"" help:"Start the dayflow TUI (default)" default:"1"`
	Export ExportCmd `cmd:"" help:"Export data to CSV or a JSON backup"`
	Import ImportCmd `cmd:"" help:"Restore a JSON backup, replacing the current data"`
	Clear  ClearCmd  `cmd:"" help:"Delete all tasks, habits and focus history"`
	Habit  HabitCmd  `cmd:"" help:"Log or list habits"`
	Stats  StatsCmd  `cmd:"" help:"Show focus statistics for recent days"`

	// Internal fields (not flags)
	cfg    *config.Config `kong:"-"`
	logger *slog.Logger   `kong:"-"`
	closer io.Closer      `kong:"-"`
	out    io.Writer      `kong:"-"`
}

// AfterApply loads the config file, resolves settings and initializes
// logging. Precedence: CLI flags > env vars > config file > defaults.
func (c *CLI) AfterApply() error {
	path := c.Config
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("locate config: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg

	// DB already holds the flag or DAYFLOW_DB if either was given.
	if c.DB == "" {
		c.DB = cfg.DBPath
	}
	if !c.Debug {
		if _, hasEnv := os.LookupEnv("DAYFLOW_DEBUG"); !hasEnv && cfg.Debug {
			c.Debug = true
		}
	}
	if c.MaxLogFiles == defaultMaxLogFiles {
		if _, hasEnv := os.LookupEnv("DAYFLOW_MAX_LOG_FILES"); !hasEnv && cfg.MaxLogFiles != nil {
			c.MaxLogFiles = *cfg.MaxLogFiles
		}
	}

	logger, closer, err := logging.Setup(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}
	c.logger = logger
	c.closer = closer
	if c.out == nil {
		c.out = os.Stdout
	}
	logger.Debug("cli initialized", "config", path, "db", c.DB)
	return nil
}

// Close releases the log file.
func (c *CLI) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// workspace is an open store with every engine loaded from it.
type workspace struct {
	store  *store.Store
	tasks  *task.Ledger
	habits *habit.Ledger
	focus  *pomodoro.Engine
}

func (w *workspace) Close() error { return w.store.Close() }

// open opens the database and loads the engines. Load failures are logged
// and leave that engine empty, like a missing document.
func (c *CLI) open() (*workspace, error) {
	path := c.DB
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("locate database: %w", err)
		}
		path = p
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	w := &workspace{
		store:  s,
		tasks:  task.NewLedger(s, c.logger),
		habits: habit.NewLedger(s, c.logger),
		focus:  pomodoro.NewEngine(s, c.logger),
	}
	if err := w.tasks.Load(); err != nil {
		c.logger.Warn("load tasks", "error", err)
	}
	if err := w.habits.Load(); err != nil {
		c.logger.Warn("load habits", "error", err)
	}
	if err := w.focus.LoadSettings(); err != nil {
		c.logger.Warn("load pomodoro settings", "error", err)
	}
	if err := w.focus.LoadSessions(); err != nil {
		c.logger.Warn("load pomodoro sessions", "error", err)
	}
	c.logger.Info("workspace opened", "db", path,
		"tasks", len(w.tasks.List()), "habits", len(w.habits.List()), "sessions", len(w.focus.Sessions()))
	return w, nil
}
