// Package core contains the business logic for focusboard: the task store,
// the focus timer state machine, preferences, the dashboard controller that
// owns them, and configuration loading.
package core

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// ConfigFileName is the base name (without extension) of the config file.
const ConfigFileName = "focusboard"

// ConfigurationManager defines the interface for loading and validating
// configuration from focusboard.yaml.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where focusboard.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Storage: models.StorageConfig{StateFile: "state.yaml"},
		Timer:   models.TimerConfig{TransitionDelay: DefaultTransitionDelay},
		EventLog: models.EventLogConfig{
			Enabled: true,
			Path:    ".focusboard_events.jsonl",
		},
		Notifications: models.NotificationConfig{
			Alerts: models.AlertConfig{
				DueSoonHours: 24,
				MaxPending:   20,
			},
		},
	}
}

// LoadGlobalConfig reads focusboard.yaml from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("storage.state_file", cfg.Storage.StateFile)
	v.SetDefault("timer.transition_delay", cfg.Timer.TransitionDelay.String())
	v.SetDefault("event_log.enabled", cfg.EventLog.Enabled)
	v.SetDefault("event_log.path", cfg.EventLog.Path)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.slack.webhook_url", cfg.Notifications.Slack.WebhookURL)
	v.SetDefault("notifications.alerts.due_soon_hours", cfg.Notifications.Alerts.DueSoonHours)
	v.SetDefault("notifications.alerts.max_pending", cfg.Notifications.Alerts.MaxPending)

	v.SetEnvPrefix("FOCUSBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg.Storage.StateFile = v.GetString("storage.state_file")
	cfg.Timer.TransitionDelay = v.GetDuration("timer.transition_delay")
	cfg.EventLog.Enabled = v.GetBool("event_log.enabled")
	cfg.EventLog.Path = v.GetString("event_log.path")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")
	cfg.Notifications.Alerts.DueSoonHours = v.GetInt("notifications.alerts.due_soon_hours")
	cfg.Notifications.Alerts.MaxPending = v.GetInt("notifications.alerts.max_pending")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.Storage.StateFile) == "" {
		errs = append(errs, "storage.state_file must not be empty")
	}

	if cfg.Timer.TransitionDelay <= 0 {
		errs = append(errs, fmt.Sprintf("timer.transition_delay must be positive, got %s", cfg.Timer.TransitionDelay))
	} else if cfg.Timer.TransitionDelay > time.Minute {
		errs = append(errs, fmt.Sprintf("timer.transition_delay must be at most 1m, got %s", cfg.Timer.TransitionDelay))
	}

	if cfg.EventLog.Enabled && strings.TrimSpace(cfg.EventLog.Path) == "" {
		errs = append(errs, "event_log.path must not be empty when the event log is enabled")
	}

	if cfg.Notifications.Alerts.DueSoonHours < 0 {
		errs = append(errs, fmt.Sprintf("notifications.alerts.due_soon_hours must be non-negative, got %d", cfg.Notifications.Alerts.DueSoonHours))
	}
	if cfg.Notifications.Alerts.MaxPending < 0 {
		errs = append(errs, fmt.Sprintf("notifications.alerts.max_pending must be non-negative, got %d", cfg.Notifications.Alerts.MaxPending))
	}

	if cfg.Notifications.Enabled {
		hook := cfg.Notifications.Slack.WebhookURL
		if hook == "" {
			errs = append(errs, "notifications.slack.webhook_url is required when notifications are enabled")
		} else if u, err := url.Parse(hook); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("notifications.slack.webhook_url %q is not an absolute URL", hook))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ResolvePath joins p onto basePath unless p is already absolute.
func ResolvePath(basePath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// ResolveBasePath determines the focusboard data directory. It checks the
// FOCUSBOARD_HOME env var, then walks up from the working directory looking
// for focusboard.yaml, then falls back to the user config directory.
func ResolveBasePath() string {
	if home := os.Getenv("FOCUSBOARD_HOME"); home != "" {
		return home
	}
	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, ConfigFileName+".yaml")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, ConfigFileName)
	}
	return "."
}
