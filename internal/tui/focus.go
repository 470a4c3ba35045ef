package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/task"
)

type focusModel struct {
	engine *pomodoro.Engine
	tasks  *task.Ledger
	now    func() time.Time
	width  int
	height int

	taskID string // task linked to the next Start
	bar    progress.Model
}

func newFocusModel(engine *pomodoro.Engine, tasks *task.Ledger) focusModel {
	return focusModel{
		engine: engine,
		tasks:  tasks,
		now:    time.Now,
		bar:    progress.New(progress.WithSolidFill(string(colorAccent)), progress.WithoutPercentage()),
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
	f.bar.Width = clamp(w-16, 10, 60)
}

// tick advances the engine by one second and reports phase changes.
func (f focusModel) tick() tea.Cmd {
	if !f.engine.Active() {
		return nil
	}
	switch f.engine.Tick() {
	case pomodoro.EventWorkComplete:
		st := f.engine.Snapshot()
		return statusCmd(fmt.Sprintf("Pomodoro #%d done! %s \a", st.CompletedPomodoros, strings.ToLower(st.Mode.Label())), false)
	case pomodoro.EventBreakComplete:
		return statusCmd("Break over, back to work \a", false)
	}
	return nil
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}
	st := f.engine.Snapshot()

	switch {
	case key.Matches(km, keys.Start):
		if st.CurrentSession != nil {
			return f, statusCmd("Session in progress. Press x to stop it first.", true)
		}
		f.engine.Start(f.taskID)
		return f, statusCmd("Focus session started", false)
	case key.Matches(km, keys.Toggle):
		if st.CurrentSession == nil {
			return f, statusCmd("Press s to start a session", false)
		}
		if st.Active {
			f.engine.Pause()
		} else {
			f.engine.Resume()
		}
	case key.Matches(km, keys.Stop):
		if st.CurrentSession == nil {
			return f, nil
		}
		n := st.CompletedPomodoros
		if err := f.engine.Stop(); err != nil {
			return f, errCmd(err)
		}
		return f, statusCmd(fmt.Sprintf("Session saved: %d pomodoro(s)", n), false)
	case key.Matches(km, keys.Reset):
		f.engine.Reset()
	case key.Matches(km, keys.Work):
		f.engine.SwitchMode(pomodoro.ModeWork)
	case key.Matches(km, keys.ShortBreak):
		f.engine.SwitchMode(pomodoro.ModeShortBreak)
	case key.Matches(km, keys.LongBreak):
		f.engine.SwitchMode(pomodoro.ModeLongBreak)
	case key.Matches(km, keys.FocusTask):
		if st.CurrentSession != nil {
			return f, statusCmd("The task is fixed once a session starts", true)
		}
		f.taskID = f.nextTask()
	}
	return f, nil
}

// nextTask cycles through today's open tasks, then back to none.
func (f focusModel) nextTask() string {
	var open []task.Task
	for _, t := range f.tasks.ByDate(dateKey(f.now())) {
		if !t.Completed {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return ""
	}
	for i, t := range open {
		if t.ID == f.taskID {
			if i+1 < len(open) {
				return open[i+1].ID
			}
			return ""
		}
	}
	return open[0].ID
}

func (f focusModel) taskTitle(id string) string {
	if id == "" {
		return ""
	}
	if t, ok := f.tasks.Get(id); ok {
		return t.Title
	}
	return "(deleted task)"
}

func (f focusModel) view() string {
	w := f.width - 4
	st := f.engine.Snapshot()
	settings := f.engine.Settings()

	title := titleStyle.Render("Focus")

	clockStyle := modeStyle(st.Mode).Width(w - 6).Align(lipgloss.Center)
	if st.CurrentSession != nil && !st.Active {
		clockStyle = timerPausedStyle.Width(w - 6)
	} else if st.CurrentSession == nil && !st.Active {
		clockStyle = timerStyle.Width(w - 6)
	}
	timeDisplay := clockStyle.Render(formatClock(st.TimeRemaining))

	var phaseLabel string
	switch {
	case st.CurrentSession == nil && !st.Active:
		phaseLabel = mutedStyle.Render(st.Mode.Label() + " · ready")
	case !st.Active:
		phaseLabel = warningStyle.Bold(true).Render(st.Mode.Label() + " · PAUSED")
	default:
		phaseLabel = modeStyle(st.Mode).Render(st.Mode.Label())
	}

	total := settings.Seconds(st.Mode)
	pct := 0.0
	if total > 0 {
		pct = float64(total-st.TimeRemaining) / float64(total)
	}
	f.bar.FullColor = string(modeColor(st.Mode))
	bar := f.bar.ViewAs(max(0, min(pct, 1)))

	taskID := f.taskID
	if st.CurrentSession != nil {
		taskID = st.CurrentSession.TaskID
	}
	taskLine := mutedStyle.Render("No task linked (t to pick one)")
	if name := f.taskTitle(taskID); name != "" {
		taskLine = highlightStyle.Render("▸ " + name)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		bar,
		"",
		renderCycle(st.CompletedPomodoros, settings.SessionsBeforeLongBreak, st.Mode),
		taskLine,
	)

	var controls string
	switch {
	case st.CurrentSession == nil:
		controls = mutedStyle.Render("s: start  t: pick task  w/b/l: mode  r: reset")
	case st.Active:
		controls = mutedStyle.Render("space: pause  x: stop & save  w/b/l: mode  r: reset")
	default:
		controls = mutedStyle.Render("space: resume  x: stop & save  w/b/l: mode  r: reset")
	}

	panel := panelStyle
	if st.Active {
		panel = activePanelStyle
	}
	return panel.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderCycle shows progress toward the next long break.
func renderCycle(completed, perCycle int, mode pomodoro.Mode) string {
	if perCycle < 1 {
		perCycle = 1
	}
	filled := completed % perCycle
	if completed > 0 && filled == 0 && mode == pomodoro.ModeLongBreak {
		filled = perCycle
	}
	var parts []string
	for i := 0; i < perCycle; i++ {
		switch {
		case i < filled:
			parts = append(parts, successStyle.Render("●"))
		case i == filled && mode == pomodoro.ModeWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d done", completed))
	return strings.Join(parts, " ") + counter
}
