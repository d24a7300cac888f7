// Package internal provides the App struct that wires all components of
// focusboard together and initializes the CLI layer.
package internal

import (
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/focusboard/internal/cli"
	"github.com/valter-silva-au/focusboard/internal/core"
	"github.com/valter-silva-au/focusboard/internal/observability"
	"github.com/valter-silva-au/focusboard/internal/storage"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// App holds all service dependencies for focusboard.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	Store storage.StateStore

	// Core services
	Board *core.Dashboard

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	slack *notifierSink
}

// NewApp creates and wires all components of focusboard. basePath is the
// directory holding focusboard.yaml and, by default, the state file and the
// event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.Store = storage.NewFileStore(core.ResolvePath(basePath, cfg.Storage.StateFile))
	if err := app.Store.Load(); err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}

	// --- Observability ---
	if cfg.EventLog.Enabled {
		app.EventLog, err = observability.NewJSONLEventLog(core.ResolvePath(basePath, cfg.EventLog.Path))
		if err != nil {
			// Non-fatal: run without the event log if it can't be opened.
			app.EventLog = nil
		}
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
		app.slack = &notifierSink{notifier: app.Notifier, events: evtAdapter}
	}

	// --- Core services ---
	var sinks []core.MessageSink
	if app.slack != nil {
		sinks = append(sinks, app.slack)
	}
	app.Board, err = core.NewDashboard(core.DashboardConfig{
		Store:           app.Store,
		Scheduler:       core.NewRealScheduler(),
		TransitionDelay: cfg.Timer.TransitionDelay,
		Sinks:           sinks,
		Events:          evtAdapter,
		OnError:         app.reportError,
	})
	if err != nil {
		return nil, err
	}

	// LoadGlobalConfig has already applied the defaults; zero is a valid
	// threshold.
	app.AlertEngine = observability.NewAlertEngine(app.Board.Tasks, observability.AlertThresholds{
		DueSoonHours: cfg.Notifications.Alerts.DueSoonHours,
		MaxPending:   cfg.Notifications.Alerts.MaxPending,
	})

	// --- Wire CLI package-level variables ---
	cli.Board = app.Board
	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// reportError surfaces failures raised on the timer tick path to whoever is
// watching the dashboard messages.
func (a *App) reportError(err error) {
	if a.Board == nil || err == nil {
		return
	}
	a.Board.Messages().Publish("Error: " + err.Error())
}

// Close stops the timer, waits for in-flight notifications and releases the
// event log file handle. It is safe to call Close on an App whose EventLog is
// nil.
func (a *App) Close() error {
	if a.Board != nil {
		a.Board.Close()
	}
	if a.slack != nil {
		a.slack.shutdown()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	message, level := observability.Describe(eventType)
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: message,
		Data:    data,
	})
}

// notifierSink forwards timer messages to a Notifier without blocking the
// timer. Failures are recorded in the event log. Messages arriving after
// shutdown are dropped.
type notifierSink struct {
	notifier observability.Notifier
	events   core.EventLogger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (s *notifierSink) DisplayMessage(message string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.notifier.Send(message); err != nil && s.events != nil {
			_ = s.events.LogEvent(observability.EventNotificationFailed, map[string]any{
				"message": message,
				"error":   err.Error(),
			})
		}
	}()
}

// shutdown stops accepting messages and waits for in-flight sends.
func (s *notifierSink) shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}
