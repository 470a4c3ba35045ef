// Package habit keeps the habit ledger and its streak counters.
package habit

import "time"

// Log is one day's entry for a habit. A habit has at most one Log per Date.
type Log struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

type Habit struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Frequency     int       `json:"frequency"` // target completions per week
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	Logs          []Log     `json:"logs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Draft holds the caller-supplied fields of a new habit.
type Draft struct {
	Name        string
	Description string
	Category    string
	Frequency   int
}

// Patch lists the editable fields; nil fields are left untouched. Streak
// counters and logs are only changed through LogCompletion.
type Patch struct {
	Name        *string
	Description *string
	Category    *string
	Frequency   *int
}

// CompletedOn reports whether the habit has a completed log for date.
func (h Habit) CompletedOn(date string) bool {
	for _, l := range h.Logs {
		if l.Date == date {
			return l.Completed
		}
	}
	return false
}

// WeekCompletions counts completed logs falling on any of dates.
func (h Habit) WeekCompletions(dates []string) int {
	want := make(map[string]bool, len(dates))
	for _, d := range dates {
		want[d] = true
	}
	n := 0
	for _, l := range h.Logs {
		if l.Completed && want[l.Date] {
			n++
		}
	}
	return n
}

func (h Habit) clone() Habit {
	c := h
	c.Logs = append([]Log(nil), h.Logs...)
	return c
}

// Tier buckets a streak length for display.
type Tier int

const (
	TierNone Tier = iota
	TierWeek
	TierFortnight
	TierMonth
)

func StreakTier(streak int) Tier {
	switch {
	case streak >= 30:
		return TierMonth
	case streak >= 14:
		return TierFortnight
	case streak >= 7:
		return TierWeek
	}
	return TierNone
}
