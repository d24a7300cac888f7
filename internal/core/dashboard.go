package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/focusboard/pkg/models"
)

// DashboardConfig holds the collaborators of a Dashboard.
type DashboardConfig struct {
	Store     KeyValueStore
	Scheduler Scheduler
	// TransitionDelay is passed through to the TimerEngine.
	TransitionDelay time.Duration
	// Sinks receive timer messages in addition to the Messages broadcaster.
	Sinks   []MessageSink
	Events  EventLogger
	OnError func(error)
}

// Dashboard owns the task store, the focus timer and the preferences of one
// session and is the single object presentation layers hold on to.
type Dashboard struct {
	Tasks       TaskStore
	Timer       *TimerEngine
	Preferences *Preferences

	messages *Broadcaster[string]
	changes  *Broadcaster[struct{}]
}

// NewDashboard loads persisted state from cfg.Store and wires the services.
func NewDashboard(cfg DashboardConfig) (*Dashboard, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("creating dashboard: store must not be nil")
	}
	d := &Dashboard{
		messages: NewBroadcaster[string](),
		changes:  NewBroadcaster[struct{}](),
	}

	tasks, err := NewTaskStore(cfg.Store, TaskStoreOptions{
		OnChange: func() { d.changes.Publish(struct{}{}) },
		Events:   cfg.Events,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dashboard: %w", err)
	}
	d.Tasks = tasks

	sinks := append(MessageSinks{MessageBroadcaster{d.messages}}, cfg.Sinks...)
	d.Timer = NewTimerEngine(cfg.Store, TimerOptions{
		Scheduler:       cfg.Scheduler,
		TransitionDelay: cfg.TransitionDelay,
		Sink:            sinks,
		Events:          cfg.Events,
		OnError:         cfg.OnError,
	})
	d.Preferences = NewPreferences(cfg.Store, cfg.Events)
	return d, nil
}

// Snapshot returns a read-only view of the whole dashboard.
func (d *Dashboard) Snapshot(filter models.TaskFilter) models.Snapshot {
	return models.Snapshot{
		Tasks:    d.Tasks.List(filter),
		Counts:   d.Tasks.Counts(),
		Timer:    d.Timer.State(),
		Stats:    d.Timer.Statistics(),
		DarkMode: d.Preferences.DarkMode(),
	}
}

// Messages returns the broadcaster carrying timer display messages.
func (d *Dashboard) Messages() *Broadcaster[string] {
	return d.messages
}

// Changes subscribes to task collection changes.
func (d *Dashboard) Changes(buffer int) <-chan struct{} {
	return d.changes.Subscribe(buffer)
}

// Close stops the timer and closes all subscriptions.
func (d *Dashboard) Close() {
	d.Timer.Close()
	d.messages.Close()
	d.changes.Close()
}
