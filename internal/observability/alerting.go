package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/focusboard/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	DueSoonHours int `yaml:"due_soon_hours" json:"due_soon_hours"`
	MaxPending   int `yaml:"max_pending" json:"max_pending"`
}

// DefaultAlertThresholds returns the default alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		DueSoonHours: 24,
		MaxPending:   20,
	}
}

// TaskSource is the read side of the task store the alert engine inspects.
type TaskSource interface {
	List(filter models.TaskFilter) []models.Task
}

// AlertEngine evaluates alert conditions against the pending tasks.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	tasks      TaskSource
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine over tasks with the given thresholds.
func NewAlertEngine(tasks TaskSource, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		tasks:      tasks,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Evaluate returns overdue alerts, then due-soon alerts, each in task order,
// then the pending-count alert. Due dates are calendar days in the local time
// zone.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	if ae.tasks == nil {
		return nil, fmt.Errorf("evaluating alerts: no task source")
	}
	now := ae.now()
	pending := ae.tasks.List(models.FilterPending)

	alerts := ae.checkDueDates(now, pending)
	alerts = append(alerts, ae.checkPendingCount(now, len(pending))...)
	return alerts, nil
}

func (ae *alertEngine) checkDueDates(now time.Time, pending []models.Task) []Alert {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	window := time.Duration(ae.thresholds.DueSoonHours) * time.Hour

	var overdue, soon []Alert
	for _, task := range pending {
		due, ok := task.Due(now.Location())
		if !ok {
			continue
		}
		switch {
		case due.Before(today):
			days := daysBetween(due, today)
			overdue = append(overdue, Alert{
				ID:          fmt.Sprintf("overdue-%d", task.ID),
				Condition:   "task_overdue",
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("task %q was due %s (%d day(s) ago)", task.Title, task.DueDate, days),
				TriggeredAt: now.UTC(),
			})
		case due.Sub(now) <= window:
			soon = append(soon, Alert{
				ID:          fmt.Sprintf("due-soon-%d", task.ID),
				Condition:   "task_due_soon",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %q is due %s", task.Title, task.DueDate),
				TriggeredAt: now.UTC(),
			})
		}
	}

	return append(overdue, soon...)
}

// daysBetween counts calendar days from a to b. Both are read as dates, so a
// daylight-saving shift between them does not change the count.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func (ae *alertEngine) checkPendingCount(now time.Time, count int) []Alert {
	if count <= ae.thresholds.MaxPending {
		return nil
	}
	return []Alert{{
		ID:          "pending-count",
		Condition:   "too_many_pending",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d tasks are pending, exceeding the maximum of %d", count, ae.thresholds.MaxPending),
		TriggeredAt: now.UTC(),
	}}
}
