// Package pomodoro implements the focus timer: a cyclic work / short break /
// long break state machine advanced one logical second per Tick.
package pomodoro

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/dayflow/internal/store"
)

var ErrPersistence = errors.New("pomodoro persistence failed")

type Documents interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

// Session is a focus session. The live one has a zero EndTime; finished
// sessions are appended to the history under store.KeyPomodoroSessions.
type Session struct {
	ID                 string    `json:"id"`
	TaskID             string    `json:"taskId,omitempty"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	Completed          bool      `json:"completed"`
	TotalWorkTime      int       `json:"totalWorkTime"`  // minutes
	TotalBreakTime     int       `json:"totalBreakTime"` // minutes
	CompletedPomodoros int       `json:"completedPomodoros"`
}

// State is a read-only snapshot of the timer.
type State struct {
	Active             bool
	Mode               Mode
	TimeRemaining      int // seconds
	CompletedPomodoros int
	CurrentSession     *Session
}

// Event tells the caller what a Tick did beyond counting down.
type Event int

const (
	EventNone Event = iota
	EventWorkComplete
	EventBreakComplete
)

// Engine is the single timer instance for the process. It is driven by an
// external one-second ticker and is not safe for concurrent use.
type Engine struct {
	docs  Documents
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	settings Settings
	sessions []Session

	active    bool
	mode      Mode
	remaining int
	completed int
	current   *Session

	workSecs  int
	breakSecs int

	err string
}

func NewEngine(docs Documents, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := DefaultSettings()
	return &Engine{
		docs:      docs,
		log:       logger,
		now:       time.Now,
		newID:     uuid.NewString,
		settings:  s,
		mode:      ModeWork,
		remaining: s.Seconds(ModeWork),
	}
}

// LoadSettings reads the stored settings. Defaults stay in place when the
// document is missing, unreadable or invalid.
func (e *Engine) LoadSettings() error {
	var s Settings
	err := e.docs.GetJSON(store.KeyPomodoroSettings, &s)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		e.log.Error("load pomodoro settings", "error", err)
		return fmt.Errorf("load settings: %w: %w", ErrPersistence, err)
	}
	if err := s.Validate(); err != nil {
		e.log.Warn("stored pomodoro settings rejected", "error", err)
		return err
	}
	e.settings = s
	e.remaining = s.Seconds(e.mode)
	return nil
}

// LoadSessions reads the finished-session history.
func (e *Engine) LoadSessions() error {
	var sessions []Session
	err := e.docs.GetJSON(store.KeyPomodoroSessions, &sessions)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		e.log.Error("load pomodoro sessions", "error", err)
		return fmt.Errorf("load sessions: %w: %w", ErrPersistence, err)
	}
	e.sessions = sessions
	return nil
}

// Start begins a fresh session in work mode, discarding any live one.
func (e *Engine) Start(taskID string) {
	e.current = &Session{
		ID:        e.newID(),
		TaskID:    taskID,
		StartTime: e.now().UTC(),
	}
	e.active = true
	e.mode = ModeWork
	e.remaining = e.settings.Seconds(ModeWork)
	e.completed = 0
	e.workSecs = 0
	e.breakSecs = 0
	e.log.Debug("pomodoro started", "session", e.current.ID, "task", taskID)
}

func (e *Engine) Pause() {
	if !e.active {
		return
	}
	e.active = false
}

func (e *Engine) Resume() {
	if e.active {
		return
	}
	e.active = true
}

// Tick advances the timer by one second. It does nothing while paused.
func (e *Engine) Tick() Event {
	if !e.active {
		return EventNone
	}
	if e.remaining > 0 {
		e.remaining--
		if e.mode == ModeWork {
			e.workSecs++
		} else {
			e.breakSecs++
		}
		return EventNone
	}

	if e.mode == ModeWork {
		e.completePomodoro()
		return EventWorkComplete
	}
	e.mode = ModeWork
	e.remaining = e.settings.Seconds(ModeWork)
	return EventBreakComplete
}

func (e *Engine) completePomodoro() {
	e.completed++
	next := ModeShortBreak
	if e.completed%e.settings.SessionsBeforeLongBreak == 0 {
		next = ModeLongBreak
	}
	e.mode = next
	e.remaining = e.settings.Seconds(next)
	e.log.Debug("pomodoro completed", "count", e.completed, "next", next)
}

// SwitchMode jumps to m with a full countdown.
func (e *Engine) SwitchMode(m Mode) {
	e.mode = m
	e.remaining = e.settings.Seconds(m)
}

// Reset restarts the countdown of the current mode.
func (e *Engine) Reset() {
	e.remaining = e.settings.Seconds(e.mode)
}

// Stop finishes the live session and appends it to the history. Without a
// live session it does nothing. The in-memory history keeps the session even
// when the write fails.
func (e *Engine) Stop() error {
	if e.current == nil {
		return nil
	}
	done := *e.current
	done.EndTime = e.now().UTC()
	done.Completed = true
	done.CompletedPomodoros = e.completed
	done.TotalWorkTime = e.workSecs / 60
	done.TotalBreakTime = e.breakSecs / 60

	e.sessions = append(e.sessions, done)
	e.current = nil
	e.active = false
	e.completed = 0
	e.log.Debug("pomodoro stopped", "session", done.ID, "pomodoros", done.CompletedPomodoros)

	if err := e.docs.SetJSON(store.KeyPomodoroSessions, e.sessions); err != nil {
		e.err = "Failed to save pomodoro session"
		e.log.Error("persist pomodoro sessions", "error", err)
		return fmt.Errorf("stop session: %w: %w", ErrPersistence, err)
	}
	return nil
}

// UpdateSettings merges p into the settings and persists them. While the
// timer is not running the countdown is reset to the new length of the
// current mode; a running countdown is left alone.
func (e *Engine) UpdateSettings(p SettingsPatch) error {
	next := e.settings.apply(p)
	if err := next.Validate(); err != nil {
		return err
	}
	e.settings = next
	if !e.active {
		e.remaining = next.Seconds(e.mode)
	}
	if err := e.docs.SetJSON(store.KeyPomodoroSettings, next); err != nil {
		e.err = "Failed to update pomodoro settings"
		e.log.Error("persist pomodoro settings", "error", err)
		return fmt.Errorf("update settings: %w: %w", ErrPersistence, err)
	}
	return nil
}

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) Active() bool { return e.active }

func (e *Engine) Snapshot() State {
	st := State{
		Active:             e.active,
		Mode:               e.mode,
		TimeRemaining:      e.remaining,
		CompletedPomodoros: e.completed,
	}
	if e.current != nil {
		c := *e.current
		st.CurrentSession = &c
	}
	return st
}

// Sessions returns a copy of the finished-session history.
func (e *Engine) Sessions() []Session {
	return append([]Session(nil), e.sessions...)
}

func (e *Engine) Err() string { return e.err }

func (e *Engine) ClearErr() { e.err = "" }
