package habit

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/dayflow/internal/store"
)

var (
	ErrNotFound    = errors.New("habit not found")
	ErrPersistence = errors.New("habit persistence failed")
)

// Documents is the slice of the key-value store the ledger needs.
type Documents interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

// Ledger owns the in-memory habit collection and mirrors every change to
// the store under store.KeyHabits. Mutations are applied in memory first;
// a failed write is reported but never rolled back.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	docs   Documents
	log    *slog.Logger
	now    func() time.Time
	newID  func() string
	habits []Habit
	err    string
}

func NewLedger(docs Documents, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{
		docs:  docs,
		log:   logger,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load replaces the in-memory collection with the stored one. A missing
// document yields an empty ledger.
func (l *Ledger) Load() error {
	var habits []Habit
	err := l.docs.GetJSON(store.KeyHabits, &habits)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		l.err = "Failed to fetch habits"
		return fmt.Errorf("load habits: %w: %w", ErrPersistence, err)
	}
	l.habits = habits
	l.err = ""
	l.log.Debug("habits loaded", "count", len(habits))
	return nil
}

func (l *Ledger) Add(d Draft) (Habit, error) {
	h := Habit{
		ID:          l.newID(),
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Frequency:   d.Frequency,
		Logs:        []Log{},
		CreatedAt:   l.now().UTC(),
	}
	l.habits = append(l.habits, h)
	l.log.Debug("habit added", "id", h.ID, "name", h.Name)
	return h.clone(), l.persist("add habit", "Failed to add habit")
}

func (l *Ledger) Update(id string, p Patch) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	h := &l.habits[i]
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Category != nil {
		h.Category = *p.Category
	}
	if p.Frequency != nil {
		h.Frequency = *p.Frequency
	}
	return l.persist("update habit", "Failed to update habit")
}

func (l *Ledger) Delete(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	l.habits = append(l.habits[:i:i], l.habits[i+1:]...)
	l.log.Debug("habit deleted", "id", id)
	return l.persist("delete habit", "Failed to delete habit")
}

// LogCompletion records completed for date and moves the streak counters.
// A completed log extends the current streak by one and any other log resets
// it; the rule looks only at the value being logged, not at the calendar, so
// logging the same day twice counts twice.
func (l *Ledger) LogCompletion(id, date string, completed bool) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("log completion %s: %w", id, ErrNotFound)
	}
	h := &l.habits[i]

	entry := Log{Date: date, Completed: completed}
	replaced := false
	for j := range h.Logs {
		if h.Logs[j].Date == date {
			h.Logs[j] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		h.Logs = append(h.Logs, entry)
	}

	if completed {
		h.CurrentStreak++
	} else {
		h.CurrentStreak = 0
	}
	h.LongestStreak = max(h.LongestStreak, h.CurrentStreak)

	l.log.Debug("habit logged",
		"id", id, "date", date, "completed", completed,
		"current_streak", h.CurrentStreak, "longest_streak", h.LongestStreak,
	)
	return l.persist("log completion", "Failed to log habit completion")
}

// Get looks a habit up in memory only.
func (l *Ledger) Get(id string) (Habit, bool) {
	i := l.index(id)
	if i < 0 {
		return Habit{}, false
	}
	return l.habits[i].clone(), true
}

// List returns a copy of every habit in insertion order.
func (l *Ledger) List() []Habit {
	out := make([]Habit, len(l.habits))
	for i, h := range l.habits {
		out[i] = h.clone()
	}
	return out
}

// Err returns the message of the last failed operation, or "".
func (l *Ledger) Err() string { return l.err }

func (l *Ledger) ClearErr() { l.err = "" }

func (l *Ledger) index(id string) int {
	for i := range l.habits {
		if l.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) persist(op, msg string) error {
	habits := l.habits
	if habits == nil {
		habits = []Habit{}
	}
	if err := l.docs.SetJSON(store.KeyHabits, habits); err != nil {
		l.err = msg
		l.log.Error("persist habits", "op", op, "error", err)
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return nil
}
