package tui

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayflow/internal/export"
	"github.com/sadopc/dayflow/internal/habit"
	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/store"
	"github.com/sadopc/dayflow/internal/task"
)

// Options wires the engines into the UI. The engines must already be
// loaded.
type Options struct {
	Store        *store.Store
	Tasks        *task.Ledger
	Habits       *habit.Ledger
	Focus        *pomodoro.Engine
	Logger       *slog.Logger
	FirstWeekday time.Weekday
	ExportDir    string // defaults to the home directory
}

// App is the root Bubble Tea model.
type App struct {
	opts   Options
	log    *slog.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today    todayModel
	habits   habitsModel
	focus    focusModel
	stats    statsModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(o Options) App {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	h := help.New()
	h.ShowAll = false

	a := App{
		opts:       o,
		log:        o.Logger,
		activeView: viewToday,
		today:      newTodayModel(o.Tasks, o.FirstWeekday),
		habits:     newHabitsModel(o.Habits, o.FirstWeekday),
		focus:      newFocusModel(o.Focus, o.Tasks),
		stats:      newStatsModel(o.Focus, o.Tasks, o.Habits),
		help:       h,
	}
	var clearData func() error
	if o.Store != nil {
		clearData = a.clearData
	}
	a.settings = newSettingsModel(o.Focus, clearData)
	return a
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.habits.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewToday)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewHabits)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewFocus)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewStats)
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if cmd := a.focus.tick(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			if e := a.engineErr(); e != "" {
				a.status = e
			}
			a.clearEngineErrs()
			a.log.Warn("action failed", "error", msg.text)
		}
		if a.activeView == viewStats {
			a.stats = a.stats.refresh()
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewStats {
		a.stats = a.stats.refresh()
	}
	return a, nil
}

// quit saves a live focus session before exiting.
func (a App) quit() tea.Cmd {
	if a.opts.Focus != nil {
		if err := a.opts.Focus.Stop(); err != nil {
			a.log.Error("save session on quit", "error", err)
		}
	}
	return tea.Quit
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewHabits:
		a.habits, cmd = a.habits.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive
	case viewHabits:
		return a.habits.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

// engineErr returns the first pending engine error message.
func (a App) engineErr() string {
	for _, e := range []string{a.opts.Tasks.Err(), a.opts.Habits.Err(), a.opts.Focus.Err()} {
		if e != "" {
			return e
		}
	}
	return ""
}

func (a App) clearEngineErrs() {
	a.opts.Tasks.ClearErr()
	a.opts.Habits.ClearErr()
	a.opts.Focus.ClearErr()
}

func (a App) clearData() error {
	if err := a.opts.Store.ClearUserData(); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	a.log.Info("user data cleared")
	if err := a.opts.Tasks.Load(); err != nil {
		return err
	}
	if err := a.opts.Habits.Load(); err != nil {
		return err
	}
	return a.opts.Focus.LoadSessions()
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewHabits:
		content = a.habits.view()
	case viewFocus:
		content = a.focus.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("dayflow")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Focus indicator visible from every view
	timerInfo := ""
	if st := a.opts.Focus.Snapshot(); st.CurrentSession != nil {
		label := formatClock(st.TimeRemaining) + " " + st.Mode.Label()
		if st.Active {
			timerInfo = modeStyle(st.Mode).Render(" ● " + label)
		} else {
			timerInfo = warningStyle.Render(" ⏸ " + label)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV (sessions + tasks)", "JSON backup"}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Format(a.exportCursor))
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport snapshots the engines on the update goroutine and writes the
// files in a command.
func (a App) doExport(format export.Format) tea.Cmd {
	snap := export.Snapshot{
		Tasks:            a.opts.Tasks.List(),
		Habits:           a.opts.Habits.List(),
		PomodoroSettings: a.opts.Focus.Settings(),
		PomodoroSessions: a.opts.Focus.Sessions(),
	}
	dir := a.opts.ExportDir
	log := a.log

	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		paths, err := export.Write(snap, format, dir, time.Now())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info("exported", "paths", paths)
		return exportDoneMsg{path: paths[0]}
	}
}
