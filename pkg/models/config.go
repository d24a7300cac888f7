package models

import "time"

// StorageConfig locates the local key-value state file.
type StorageConfig struct {
	StateFile string `yaml:"state_file" mapstructure:"state_file"`
}

// TimerConfig holds focus timer settings.
type TimerConfig struct {
	// TransitionDelay is how long an expired interval stays at 00:00 before
	// the timer switches to the other mode.
	TransitionDelay time.Duration `yaml:"transition_delay" mapstructure:"transition_delay"`
}

// EventLogConfig controls the JSONL event log.
type EventLogConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SlackConfig holds the Slack incoming webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// AlertConfig holds the thresholds used by the alert engine.
type AlertConfig struct {
	DueSoonHours int `yaml:"due_soon_hours" mapstructure:"due_soon_hours"`
	MaxPending   int `yaml:"max_pending" mapstructure:"max_pending"`
}

// NotificationConfig controls forwarding of messages and alerts.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
	Alerts  AlertConfig `yaml:"alerts" mapstructure:"alerts"`
}

// GlobalConfig holds system-wide settings read from focusboard.yaml via Viper.
type GlobalConfig struct {
	Storage       StorageConfig      `yaml:"storage" mapstructure:"storage"`
	Timer         TimerConfig        `yaml:"timer" mapstructure:"timer"`
	EventLog      EventLogConfig     `yaml:"event_log" mapstructure:"event_log"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
