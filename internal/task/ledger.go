package task

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/dayflow/internal/store"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrPersistence = errors.New("task persistence failed")
)

type Documents interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

// Ledger owns the task list and writes it through to store.KeyTasks after
// each in-memory change. Not safe for concurrent use.
type Ledger struct {
	docs  Documents
	log   *slog.Logger
	now   func() time.Time
	newID func() string
	tasks []Task
	err   string
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

func (l *Ledger) Load() error {
	var tasks []Task
	err := l.docs.GetJSON(store.KeyTasks, &tasks)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		l.err = "Failed to fetch tasks"
		return fmt.Errorf("load tasks: %w: %w", ErrPersistence, err)
	}
	l.tasks = tasks
	l.err = ""
	return nil
}

func (l *Ledger) Add(d Draft) (Task, error) {
	now := l.now().UTC()
	t := Task{
		ID:          l.newID(),
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Priority:    d.Priority,
		Category:    d.Category,
		Recurrence:  d.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryOther
	}
	if t.Recurrence == "" {
		t.Recurrence = RecurrenceNone
	}
	l.tasks = append(l.tasks, t)
	l.log.Debug("task added", "id", t.ID, "date", t.Date)
	return t, l.persist("add task", "Failed to add task")
}

func (l *Ledger) Update(id string, p Patch) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	t := &l.tasks[i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Recurrence != nil {
		t.Recurrence = *p.Recurrence
	}
	t.UpdatedAt = l.now().UTC()
	return l.persist("update task", "Failed to update task")
}

func (l *Ledger) Delete(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	l.tasks = append(l.tasks[:i:i], l.tasks[i+1:]...)
	return l.persist("delete task", "Failed to delete task")
}

// ToggleCompletion flips a task's completed flag. Completing a recurring
// task extends its streak; un-completing leaves the streak alone.
func (l *Ledger) ToggleCompletion(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	t := &l.tasks[i]
	if t.Recurring() && !t.Completed {
		t.Streak++
	}
	t.Completed = !t.Completed
	t.UpdatedAt = l.now().UTC()
	l.log.Debug("task toggled", "id", id, "completed", t.Completed)
	return l.persist("toggle task", "Failed to toggle task completion")
}

func (l *Ledger) Get(id string) (Task, bool) {
	i := l.index(id)
	if i < 0 {
		return Task{}, false
	}
	return l.tasks[i], true
}

// ByDate returns the tasks scheduled on date, in insertion order.
func (l *Ledger) ByDate(date string) []Task {
	var out []Task
	for _, t := range l.tasks {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out
}

func (l *Ledger) List() []Task {
	return append([]Task(nil), l.tasks...)
}

func (l *Ledger) Err() string { return l.err }

func (l *Ledger) ClearErr() { l.err = "" }

func (l *Ledger) index(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) persist(op, msg string) error {
	tasks := l.tasks
	if tasks == nil {
		tasks = []Task{}
	}
	if err := l.docs.SetJSON(store.KeyTasks, tasks); err != nil {
		l.err = msg
		l.log.Error("persist tasks", "op", op, "error", err)
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return nil
}
