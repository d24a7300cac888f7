package observability

import (
	"fmt"
	"time"
)

// focusMinutesPerSession mirrors the focus credit granted per work interval.
const focusMinutesPerSession = 25

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	TasksCreated    int            `json:"tasks_created"`
	TasksCompleted  int            `json:"tasks_completed"`
	TasksDeleted    int            `json:"tasks_deleted"`
	TasksByPriority map[string]int `json:"tasks_by_priority"`
	TimerStarts     int            `json:"timer_starts"`
	WorkSessions    int            `json:"work_sessions"`
	BreaksTaken     int            `json:"breaks_taken"`
	FocusMinutes    int            `json:"focus_minutes"`
	PersistFailures int            `json:"persist_failures"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{TasksByPriority: make(map[string]int)}
	m.EventCount = len(events)

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskCreated:
			m.TasksCreated++
			if p, ok := event.Data["priority"].(string); ok {
				m.TasksByPriority[p]++
			}
		case EventTaskCompleted:
			m.TasksCompleted++
		case EventTaskDeleted:
			m.TasksDeleted++
		case EventTimerStarted:
			m.TimerStarts++
		case EventTimerExpired:
			switch event.Data["mode"] {
			case "work":
				m.WorkSessions++
				m.FocusMinutes += focusMinutesPerSession
			case "break":
				m.BreaksTaken++
			}
		case EventStatsPersistFailed:
			m.PersistFailures++
		}
	}

	return m, nil
}
