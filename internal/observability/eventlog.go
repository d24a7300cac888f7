package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Event types written by the core services.
const (
	EventTaskCreated        = "task.created"
	EventTaskCompleted      = "task.completed"
	EventTaskDeleted        = "task.deleted"
	EventTimerStarted       = "timer.started"
	EventTimerPaused        = "timer.paused"
	EventTimerReset         = "timer.reset"
	EventTimerModeSwitched  = "timer.mode_switched"
	EventTimerExpired       = "timer.expired"
	EventTimerTransitioned  = "timer.transitioned"
	EventStatsPersistFailed = "stats.persist_failed"
	EventPreferencesChanged = "preferences.changed"
	EventNotificationFailed = "notification.failed"
)

var eventMessages = map[string]string{
	EventTaskCreated:        "task created",
	EventTaskCompleted:      "task completed",
	EventTaskDeleted:        "task deleted",
	EventTimerStarted:       "timer started",
	EventTimerPaused:        "timer paused",
	EventTimerReset:         "timer reset",
	EventTimerModeSwitched:  "timer mode switched",
	EventTimerExpired:       "interval expired",
	EventTimerTransitioned:  "timer switched to next interval",
	EventStatsPersistFailed: "saving focus statistics failed",
	EventPreferencesChanged: "preferences changed",
	EventNotificationFailed: "sending notification failed",
}

// Describe returns the human-readable message and level for an event type.
func Describe(eventType string) (message, level string) {
	message, ok := eventMessages[eventType]
	if !ok {
		message = eventType
	}
	switch eventType {
	case EventStatsPersistFailed:
		level = LevelError
	case EventNotificationFailed:
		level = LevelWarn
	default:
		level = LevelInfo
	}
	return message, level
}

// Event represents a single observable event in the system.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN, ERROR
	Type    string         `json:"type"`  // e.g. "task.created", "timer.expired"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using an append-only JSONL file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog opens (creating if needed) a JSONL event log at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path: path,
		file: f,
	}, nil
}

// Write appends one JSON-encoded event line. The timer goroutine and the UI
// write concurrently, so lines are serialized under the mutex.
func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read scans the log and returns events matching filter in file order.
// Malformed lines are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if filter.matches(event) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func (f EventFilter) matches(event Event) bool {
	if f.Since != nil && event.Time.Before(*f.Since) {
		return false
	}
	if f.Until != nil && event.Time.After(*f.Until) {
		return false
	}
	if f.Type != "" && event.Type != f.Type {
		return false
	}
	if f.Level != "" && event.Level != f.Level {
		return false
	}
	return true
}
