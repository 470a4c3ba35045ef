package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayflow/internal/pomodoro"
)

type settingsModel struct {
	engine *pomodoro.Engine
	width  int
	height int

	formActive bool
	form       *huh.Form
	clearing   bool // form is the clear-data confirmation

	// clearData wipes user data and reloads the engines.
	clearData func() error

	// Form values as pointers (survive value copies)
	work       *string
	shortBreak *string
	longBreak  *string
	sessions   *string
	confirm    *bool
}

func newSettingsModel(engine *pomodoro.Engine, clearData func() error) settingsModel {
	w, sb, lb, n := "", "", "", ""
	confirm := false
	return settingsModel{
		engine:     engine,
		clearData:  clearData,
		work:       &w,
		shortBreak: &sb,
		longBreak:  &lb,
		sessions:   &n,
		confirm:    &confirm,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.ClearData):
			if s.clearData != nil {
				return s.showClearConfirm()
			}
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.engine.Settings()
	*s.work = strconv.Itoa(cur.WorkDuration)
	*s.shortBreak = strconv.Itoa(cur.ShortBreakDuration)
	*s.longBreak = strconv.Itoa(cur.LongBreakDuration)
	*s.sessions = strconv.Itoa(cur.SessionsBeforeLongBreak)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.work).Validate(validatePositive),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validatePositive),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validatePositive),
			huh.NewInput().Title("Pomodoros before long break").Value(s.sessions).Validate(validatePositive),
		).Title("Pomodoro"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.clearing = false
	return s, s.form.Init()
}

func (s settingsModel) showClearConfirm() (settingsModel, tea.Cmd) {
	*s.confirm = false
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete all tasks, habits and focus history?").
				Description("Pomodoro settings are kept. This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(s.confirm),
		),
	).WithShowHelp(true)

	s.formActive = true
	s.clearing = true
	return s, s.form.Init()
}

func validatePositive(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if s.clearing {
			if !*s.confirm {
				return s, nil
			}
			if err := s.clearData(); err != nil {
				return s, errCmd(err)
			}
			return s, statusCmd("All data cleared", false)
		}
		if err := s.saveSettings(); err != nil {
			return s, errCmd(err)
		}
		return s, statusCmd("Settings saved", false)
	}

	return s, cmd
}

func (s settingsModel) patch() pomodoro.SettingsPatch {
	atoi := func(v string) *int {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &n
	}
	return pomodoro.SettingsPatch{
		WorkDuration:            atoi(*s.work),
		ShortBreakDuration:      atoi(*s.shortBreak),
		LongBreakDuration:       atoi(*s.longBreak),
		SessionsBeforeLongBreak: atoi(*s.sessions),
	}
}

func (s settingsModel) saveSettings() error {
	return s.engine.UpdateSettings(s.patch())
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.engine.Settings()
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(30).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		title,
		"",
		row("Work", fmt.Sprintf("%d min", cur.WorkDuration)),
		row("Short break", fmt.Sprintf("%d min", cur.ShortBreakDuration)),
		row("Long break", fmt.Sprintf("%d min", cur.LongBreakDuration)),
		row("Pomodoros before long break", strconv.Itoa(cur.SessionsBeforeLongBreak)),
		"",
		mutedStyle.Render("enter: edit settings  C: clear all data"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
