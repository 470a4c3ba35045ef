package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayflow/internal/task"
)

type todayModel struct {
	tasks        *task.Ledger
	firstWeekday time.Weekday
	now          func() time.Time
	width        int
	height       int

	selected time.Time
	cursor   int

	formActive bool
	form       *huh.Form
	editingID  string // empty for a new task

	// Form field pointers (survive value copies)
	formTitle      *string
	formDesc       *string
	formStart      *string
	formEnd        *string
	formPriority   *task.Priority
	formCategory   *task.Category
	formRecurrence *task.Recurrence
}

func newTodayModel(tasks *task.Ledger, firstWeekday time.Weekday) todayModel {
	var title, desc, start, end string
	prio, cat, rec := task.PriorityMedium, task.CategoryOther, task.RecurrenceNone
	return todayModel{
		tasks:          tasks,
		firstWeekday:   firstWeekday,
		now:            time.Now,
		selected:       startOfDay(time.Now()),
		formTitle:      &title,
		formDesc:       &desc,
		formStart:      &start,
		formEnd:        &end,
		formPriority:   &prio,
		formCategory:   &cat,
		formRecurrence: &rec,
	}
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t todayModel) visible() []task.Task {
	return t.tasks.ByDate(dateKey(t.selected))
}

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}
	list := t.visible()
	t.cursor = clamp(t.cursor, 0, max(0, len(list)-1))

	switch {
	case key.Matches(km, keys.Left):
		t.selected = t.selected.AddDate(0, 0, -1)
		t.cursor = 0
	case key.Matches(km, keys.Right):
		t.selected = t.selected.AddDate(0, 0, 1)
		t.cursor = 0
	case key.Matches(km, keys.Today):
		t.selected = startOfDay(t.now())
		t.cursor = 0
	case key.Matches(km, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(km, keys.Down):
		if t.cursor < len(list)-1 {
			t.cursor++
		}
	case key.Matches(km, keys.Toggle):
		if len(list) > 0 {
			return t, errCmd(t.tasks.ToggleCompletion(list[t.cursor].ID))
		}
	case key.Matches(km, keys.New):
		return t.showForm(nil)
	case key.Matches(km, keys.Edit):
		if len(list) > 0 {
			tk := list[t.cursor]
			return t.showForm(&tk)
		}
	case key.Matches(km, keys.Delete):
		if len(list) > 0 {
			err := t.tasks.Delete(list[t.cursor].ID)
			if t.cursor > 0 {
				t.cursor--
			}
			return t, errCmd(err)
		}
	}
	return t, nil
}

func (t todayModel) showForm(existing *task.Task) (todayModel, tea.Cmd) {
	t.editingID = ""
	*t.formTitle, *t.formDesc, *t.formStart, *t.formEnd = "", "", "", ""
	*t.formPriority = task.PriorityMedium
	*t.formCategory = task.CategoryOther
	*t.formRecurrence = task.RecurrenceNone
	if existing != nil {
		t.editingID = existing.ID
		*t.formTitle = existing.Title
		*t.formDesc = existing.Description
		*t.formStart = existing.StartTime
		*t.formEnd = existing.EndTime
		*t.formPriority = existing.Priority
		*t.formCategory = existing.Category
		*t.formRecurrence = existing.Recurrence
	}

	catOptions := make([]huh.Option[task.Category], len(task.Categories))
	for i, c := range task.Categories {
		catOptions[i] = huh.NewOption(string(c), c)
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(t.formTitle).Validate(requireText),
			huh.NewInput().Title("Description").Value(t.formDesc),
			huh.NewInput().Title("Start (HH:MM)").Value(t.formStart).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM)").Value(t.formEnd).Validate(validateClock),
		),
		huh.NewGroup(
			huh.NewSelect[task.Priority]().Title("Priority").
				Options(
					huh.NewOption("High", task.PriorityHigh),
					huh.NewOption("Medium", task.PriorityMedium),
					huh.NewOption("Low", task.PriorityLow),
				).Value(t.formPriority),
			huh.NewSelect[task.Category]().Title("Category").Options(catOptions...).Value(t.formCategory),
			huh.NewSelect[task.Recurrence]().Title("Repeats").
				Options(
					huh.NewOption("Never", task.RecurrenceNone),
					huh.NewOption("Daily", task.RecurrenceDaily),
					huh.NewOption("Weekdays", task.RecurrenceWeekdays),
					huh.NewOption("Weekly", task.RecurrenceWeekly),
					huh.NewOption("Monthly", task.RecurrenceMonthly),
				).Value(t.formRecurrence),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		return t, errCmd(t.saveForm())
	}
	return t, cmd
}

func (t todayModel) saveForm() error {
	title := strings.TrimSpace(*t.formTitle)
	if t.editingID == "" {
		_, err := t.tasks.Add(task.Draft{
			Title:       title,
			Description: *t.formDesc,
			Date:        dateKey(t.selected),
			StartTime:   *t.formStart,
			EndTime:     *t.formEnd,
			Priority:    *t.formPriority,
			Category:    *t.formCategory,
			Recurrence:  *t.formRecurrence,
		})
		return err
	}
	return t.tasks.Update(t.editingID, task.Patch{
		Title:       &title,
		Description: t.formDesc,
		StartTime:   t.formStart,
		EndTime:     t.formEnd,
		Priority:    t.formPriority,
		Category:    t.formCategory,
		Recurrence:  t.formRecurrence,
	})
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validateClock(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

func (t todayModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()),
		)
	}

	today := startOfDay(t.now())
	heading := t.selected.Format("Monday, Jan 02")
	if t.selected.Equal(today) {
		heading = "Today · " + heading
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.renderWeekStrip(w, today),
		t.renderTaskList(w, heading),
	)
}

func (t todayModel) renderWeekStrip(w int, today time.Time) string {
	var cells []string
	for _, d := range weekDates(t.selected, t.firstWeekday) {
		list := t.tasks.ByDate(dateKey(d))
		done := 0
		for _, tk := range list {
			if tk.Completed {
				done++
			}
		}
		label := d.Format("Mon 02")
		count := mutedStyle.Render(fmt.Sprintf("%d/%d", done, len(list)))
		if len(list) > 0 && done == len(list) {
			count = successStyle.Render(fmt.Sprintf("%d/%d", done, len(list)))
		}

		style := inactiveTabStyle
		switch {
		case d.Equal(t.selected):
			style = activeTabStyle
		case d.Equal(today):
			style = inactiveTabStyle.Foreground(colorHighlight)
		}
		cells = append(cells, style.Render(lipgloss.JoinVertical(lipgloss.Center, label, count)))
	}
	return panelStyle.Width(w).Padding(0, 1).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, cells...))
}

func (t todayModel) renderTaskList(w int, heading string) string {
	list := t.visible()
	title := titleStyle.Render(heading)

	if len(list) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks for this day. Press n to add one."),
		))
	}

	cursor := clamp(t.cursor, 0, len(list)-1)
	done := 0
	var rows []string
	for i, tk := range list {
		if tk.Completed {
			done++
		}
		rows = append(rows, renderTaskRow(tk, i == cursor))
	}

	header := fmt.Sprintf("%s  %s", title, highlightStyle.Render(fmt.Sprintf("%d/%d done", done, len(list))))
	body := append([]string{header, ""}, rows...)
	body = append(body, "", mutedStyle.Render("  ←/→: day  space: toggle  n: new  e: edit  d: delete  .: today"))
	return panelStyle.Width(w).Render(strings.Join(body, "\n"))
}

func renderTaskRow(tk task.Task, selected bool) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	check := "[ ]"
	if tk.Completed {
		check = successStyle.Render("[✓]")
		if !selected {
			style = doneItemStyle
		}
	}

	when := ""
	if tk.StartTime != "" {
		when = tk.StartTime
		if tk.EndTime != "" {
			when += "–" + tk.EndTime
		}
		when = mutedStyle.Render(when) + " "
	}

	extra := priorityStyle(tk.Priority).Render(fmt.Sprintf(" %s", tk.Priority)) +
		mutedStyle.Render(fmt.Sprintf(" #%s", tk.Category))
	if tk.Recurring() {
		extra += highlightStyle.Render(fmt.Sprintf(" ↻ %s", tk.Recurrence))
		if tk.Streak > 0 {
			extra += warningStyle.Render(fmt.Sprintf(" 🔥%d", tk.Streak))
		}
	}
	return fmt.Sprintf("%s%s %s%s%s", cursor, check, when, style.Render(tk.Title), extra)
}
