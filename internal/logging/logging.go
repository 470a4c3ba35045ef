// Package logging builds the application's slog.Logger. Logs go to a file
// because the TUI owns the terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup returns a logger and the file it writes to. With debug off and no
// debugFile, logs are discarded. DAYFLOW_DEBUG=1 and DAYFLOW_DEBUG_FILE
// override the arguments.
func Setup(debug bool, debugFile string, maxLogFiles int) (*slog.Logger, io.Closer, error) {
	if os.Getenv("DAYFLOW_DEBUG") == "1" {
		debug = true
	}
	if env := os.Getenv("DAYFLOW_DEBUG_FILE"); env != "" && debugFile == "" {
		debugFile = env
	}
	if env := os.Getenv("DAYFLOW_MAX_LOG_FILES"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			maxLogFiles = n
		}
	}

	if !debug && debugFile == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}

	path := debugFile
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	} else {
		dir, err := logDir()
		if err != nil {
			return nil, nil, fmt.Errorf("get log directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		if maxLogFiles > 0 {
			if err := rotate(dir, maxLogFiles); err != nil {
				fmt.Fprintf(os.Stderr, "warning: log rotation failed: %v\n", err)
			}
		}
		path = filepath.Join(dir, uuid.NewString()+".log")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("debug logging initialized", "log_file", path)
	return logger, f, nil
}

// rotate deletes the oldest .log files in dir so that, with the file about
// to be created, at most keep remain.
func rotate(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read log directory: %w", err)
	}

	type logFile struct {
		path string
		mod  int64
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}
	if len(files) < keep {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })
	excess := len(files) - keep + 1
	for i := 0; i < excess; i++ {
		if err := os.Remove(files[i].path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: remove old log %s: %v\n", files[i].path, err)
		}
	}
	return nil
}

func logDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "dayflow"), nil
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(base, "dayflow", "logs"), nil
	default:
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "dayflow"), nil
	}
}
