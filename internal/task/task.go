// Package task is the dated to-do ledger.
package task

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategorySocial   Category = "social"
	CategoryOther    Category = "other"
)

var Categories = []Category{
	CategoryWork, CategoryPersonal, CategoryHealth,
	CategoryLearning, CategorySocial, CategoryOther,
}

type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekdays Recurrence = "weekdays"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceMonthly  Recurrence = "monthly"
	RecurrenceCustom   Recurrence = "custom"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Date        string     `json:"date"`                // YYYY-MM-DD
	StartTime   string     `json:"startTime,omitempty"` // HH:MM
	EndTime     string     `json:"endTime,omitempty"`   // HH:MM
	Priority    Priority   `json:"priority"`
	Category    Category   `json:"category"`
	Recurrence  Recurrence `json:"recurrence"`
	Streak      int        `json:"streak,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Recurring reports whether the task repeats.
func (t Task) Recurring() bool {
	return t.Recurrence != "" && t.Recurrence != RecurrenceNone
}

type Draft struct {
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Priority    Priority
	Category    Category
	Recurrence  Recurrence
}

// Patch lists editable fields; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Date        *string
	StartTime   *string
	EndTime     *string
	Priority    *Priority
	Category    *Category
	Recurrence  *Recurrence
}
