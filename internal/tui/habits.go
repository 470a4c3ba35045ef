package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayflow/internal/habit"
	"github.com/sadopc/dayflow/internal/task"
)

type habitsModel struct {
	habits       *habit.Ledger
	firstWeekday time.Weekday
	now          func() time.Time
	width        int
	height       int

	cursor int

	formActive bool
	form       *huh.Form
	editingID  string

	formName      *string
	formDesc      *string
	formCategory  *string
	formFrequency *string
}

func newHabitsModel(habits *habit.Ledger, firstWeekday time.Weekday) habitsModel {
	var name, desc, freq string
	cat := string(task.CategoryHealth)
	return habitsModel{
		habits:        habits,
		firstWeekday:  firstWeekday,
		now:           time.Now,
		formName:      &name,
		formDesc:      &desc,
		formCategory:  &cat,
		formFrequency: &freq,
	}
}

func (h *habitsModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

func (h habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}
	list := h.habits.List()
	h.cursor = clamp(h.cursor, 0, max(0, len(list)-1))

	switch {
	case key.Matches(km, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(km, keys.Down):
		if h.cursor < len(list)-1 {
			h.cursor++
		}
	case key.Matches(km, keys.Toggle):
		if len(list) > 0 {
			hb := list[h.cursor]
			today := dateKey(h.now())
			if err := h.habits.LogCompletion(hb.ID, today, !hb.CompletedOn(today)); err != nil {
				return h, errCmd(err)
			}
			if updated, ok := h.habits.Get(hb.ID); ok && habit.StreakTier(updated.CurrentStreak) > habit.StreakTier(hb.CurrentStreak) {
				return h, statusCmd(fmt.Sprintf("%s: %d day streak!", updated.Name, updated.CurrentStreak), false)
			}
		}
	case key.Matches(km, keys.New):
		return h.showForm(nil)
	case key.Matches(km, keys.Edit):
		if len(list) > 0 {
			hb := list[h.cursor]
			return h.showForm(&hb)
		}
	case key.Matches(km, keys.Delete):
		if len(list) > 0 {
			err := h.habits.Delete(list[h.cursor].ID)
			if h.cursor > 0 {
				h.cursor--
			}
			return h, errCmd(err)
		}
	}
	return h, nil
}

func (h habitsModel) showForm(existing *habit.Habit) (habitsModel, tea.Cmd) {
	h.editingID = ""
	*h.formName, *h.formDesc = "", ""
	*h.formCategory = string(task.CategoryHealth)
	*h.formFrequency = "7"
	if existing != nil {
		h.editingID = existing.ID
		*h.formName = existing.Name
		*h.formDesc = existing.Description
		*h.formCategory = existing.Category
		*h.formFrequency = strconv.Itoa(existing.Frequency)
	}

	catOptions := make([]huh.Option[string], len(task.Categories))
	for i, c := range task.Categories {
		catOptions[i] = huh.NewOption(string(c), string(c))
	}

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit").Value(h.formName).Validate(requireText),
			huh.NewInput().Title("Description").Value(h.formDesc),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(h.formCategory),
			huh.NewInput().Title("Times per week").Value(h.formFrequency).Validate(validateFrequency),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func validateFrequency(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 7 {
		return errors.New("enter 1-7")
	}
	return nil
}

func (h habitsModel) updateForm(msg tea.Msg) (habitsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		return h, errCmd(h.saveForm())
	}
	return h, cmd
}

func (h habitsModel) saveForm() error {
	name := strings.TrimSpace(*h.formName)
	freq, _ := strconv.Atoi(strings.TrimSpace(*h.formFrequency))
	if h.editingID == "" {
		_, err := h.habits.Add(habit.Draft{
			Name:        name,
			Description: *h.formDesc,
			Category:    *h.formCategory,
			Frequency:   freq,
		})
		return err
	}
	return h.habits.Update(h.editingID, habit.Patch{
		Name:        &name,
		Description: h.formDesc,
		Category:    h.formCategory,
		Frequency:   &freq,
	})
}

func (h habitsModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		title := titleStyle.Render("New Habit")
		if h.editingID != "" {
			title = titleStyle.Render("Edit Habit")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", h.form.View()),
		)
	}

	title := titleStyle.Render("Habits")
	list := h.habits.List()
	if len(list) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No habits yet. Press n to create one."),
		))
	}

	now := h.now()
	today := dateKey(now)
	week := weekDates(now, h.firstWeekday)
	weekKeys := dateKeys(week)

	doneToday := 0
	for _, hb := range list {
		if hb.CompletedOn(today) {
			doneToday++
		}
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("%s  %s", title,
		highlightStyle.Render(fmt.Sprintf("%d/%d today", doneToday, len(list)))))
	rows = append(rows, "")

	var dayHeads []string
	for _, d := range week {
		dayHeads = append(dayHeads, d.Format("Mon")[:2])
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-20s %-8s %-12s", "", "Habit", strings.Join(dayHeads, " "), "Week", "Streak")))

	cursor := clamp(h.cursor, 0, len(list)-1)
	for i, hb := range list {
		rows = append(rows, renderHabitRow(hb, i == cursor, today, weekKeys))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: toggle today  n: new  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func renderHabitRow(hb habit.Habit, selected bool, today string, week []string) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	check := "[ ]"
	if hb.CompletedOn(today) {
		check = successStyle.Render("[✓]")
	}

	var cells []string
	for _, d := range week {
		switch {
		case hb.CompletedOn(d):
			cells = append(cells, successStyle.Render("● "))
		case d > today:
			cells = append(cells, mutedStyle.Render("· "))
		default:
			cells = append(cells, mutedStyle.Render("○ "))
		}
	}

	progress := fmt.Sprintf("%d/%d", hb.WeekCompletions(week), hb.Frequency)
	progressStyle := mutedStyle
	if hb.Frequency > 0 && hb.WeekCompletions(week) >= hb.Frequency {
		progressStyle = successStyle
	}

	streak := fmt.Sprintf("%d (best %d)", hb.CurrentStreak, hb.LongestStreak)
	return fmt.Sprintf("%s%s %s %s %s %s %s",
		cursor,
		check,
		style.Render(fmt.Sprintf("%-24s", truncate(hb.Name, 24))),
		strings.Join(cells, ""),
		progressStyle.Render(fmt.Sprintf("%-8s", progress)),
		highlightStyle.Render(streak),
		streakBadge(hb.CurrentStreak),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
