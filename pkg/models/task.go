package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format used for task due dates.
const DateLayout = "2006-01-02"

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assigned when a task is created without one.
const DefaultPriority = PriorityMedium

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority converts user input to a Priority. An empty string yields
// DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q: must be one of high, medium, low", s)
	}
	return p, nil
}

// TaskFilter selects a view over the task collection.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter converts user input to a TaskFilter. An empty string yields
// FilterAll.
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch f := TaskFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("invalid filter %q: must be one of all, pending, completed", s)
	}
}

// Next returns the filter that follows f in the all -> pending -> completed cycle.
func (f TaskFilter) Next() TaskFilter {
	switch f {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Matches reports whether the task belongs to the filtered view.
func (f TaskFilter) Matches(t Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Task is a single to-do item on the dashboard.
type Task struct {
	ID          int64      `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Priority    Priority   `yaml:"priority" json:"priority"`
	DueDate     string     `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	Completed   bool       `yaml:"completed" json:"completed"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Due returns the parsed due date in loc, or false when the task has none.
func (t Task) Due(loc *time.Location) (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// TaskInput carries the caller-supplied fields for a new task.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     string
}

// TaskCounts summarises the collection for the statistics panel.
type TaskCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
