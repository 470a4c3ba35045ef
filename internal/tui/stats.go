package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayflow/internal/habit"
	"github.com/sadopc/dayflow/internal/pomodoro"
	"github.com/sadopc/dayflow/internal/task"
)

type statsModel struct {
	engine *pomodoro.Engine
	tasks  *task.Ledger
	habits *habit.Ledger
	now    func() time.Time
	width  int
	height int

	offset int // 7-day blocks back from today (0 = current)
	chart  barchart.Model
}

func newStatsModel(engine *pomodoro.Engine, tasks *task.Ledger, habits *habit.Ledger) statsModel {
	return statsModel{
		engine: engine,
		tasks:  tasks,
		habits: habits,
		now:    time.Now,
		chart:  barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

// days returns the seven days shown, oldest first.
func (s statsModel) days() []time.Time {
	end := startOfDay(s.now()).AddDate(0, 0, -7*s.offset)
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = end.AddDate(0, 0, i-6)
	}
	return out
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Left):
			s.offset++
		case key.Matches(km, keys.Right):
			if s.offset > 0 {
				s.offset--
			}
		case key.Matches(km, keys.Today):
			s.offset = 0
		default:
			return s, nil
		}
		s.buildChart()
	}
	return s, nil
}

// refresh redraws the chart from the current history.
func (s statsModel) refresh() statsModel {
	s.buildChart()
	return s
}

// periodStats aggregates finished sessions over a run of days.
type periodStats struct {
	perDay       []int // completed pomodoros, aligned with the days
	sessions     int
	pomodoros    int
	workMinutes  int
	breakMinutes int
}

func aggregate(sessions []pomodoro.Session, days []time.Time) periodStats {
	idx := make(map[string]int, len(days))
	for i, d := range days {
		idx[dateKey(d)] = i
	}
	ps := periodStats{perDay: make([]int, len(days))}
	for _, sess := range sessions {
		i, ok := idx[dateKey(sess.StartTime.Local())]
		if !ok {
			continue
		}
		ps.perDay[i] += sess.CompletedPomodoros
		ps.sessions++
		ps.pomodoros += sess.CompletedPomodoros
		ps.workMinutes += sess.TotalWorkTime
		ps.breakMinutes += sess.TotalBreakTime
	}
	return ps
}

func (s *statsModel) buildChart() {
	chartWidth := max(s.width-8, 20)
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}
	s.chart = barchart.New(chartWidth, chartHeight)

	days := s.days()
	ps := aggregate(s.engine.Sessions(), days)

	barStyle := lipgloss.NewStyle().Foreground(colorAccent)
	var bars []barchart.BarData
	for i, d := range days {
		style := barStyle
		if ps.perDay[i] == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "Pomodoros",
				Value: float64(ps.perDay[i]),
				Style: style,
			}},
		})
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4
	days := s.days()

	dateLabel := mutedStyle.Render(fmt.Sprintf("%s – %s", days[0].Format("Jan 02"), days[len(days)-1].Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", mutedStyle.Render("Pomodoros per day"), "  ", dateLabel,
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			s.chart.View(), "",
			s.renderSummary(w, days), "",
			mutedStyle.Render("  ←/→: navigate  .: this week"),
		),
	)
}

func (s statsModel) renderSummary(w int, days []time.Time) string {
	ps := aggregate(s.engine.Sessions(), days)

	tasksDone, tasksTotal := 0, 0
	for _, d := range days {
		for _, t := range s.tasks.ByDate(dateKey(d)) {
			tasksTotal++
			if t.Completed {
				tasksDone++
			}
		}
	}

	bestCurrent, bestEver := "-", 0
	top := 0
	for _, h := range s.habits.List() {
		if h.CurrentStreak > top {
			top = h.CurrentStreak
			bestCurrent = fmt.Sprintf("%s (%d)", h.Name, h.CurrentStreak)
		}
		bestEver = max(bestEver, h.LongestStreak)
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %-22s %s", label, highlightStyle.Render(value))
	}
	rows := []string{
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 40))),
		row("Focus sessions", fmt.Sprintf("%d", ps.sessions)),
		row("Pomodoros", fmt.Sprintf("%d", ps.pomodoros)),
		row("Focus time", formatMinutes(ps.workMinutes)),
		row("Break time", formatMinutes(ps.breakMinutes)),
		row("Tasks done", fmt.Sprintf("%d/%d", tasksDone, tasksTotal)),
		row("Top habit streak", bestCurrent),
		row("Longest streak ever", fmt.Sprintf("%d", bestEver)),
	}
	return strings.Join(rows, "\n")
}
