package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/focusboard/internal/observability"
)

type alertsMock struct {
	evaluateFn func() ([]observability.Alert, error)
}

func (m *alertsMock) Evaluate() ([]observability.Alert, error) {
	return m.evaluateFn()
}

type notifierMock struct {
	notifyFn func(alerts []observability.Alert) error
	sent     []string
}

func (m *notifierMock) Notify(alerts []observability.Alert) error {
	return m.notifyFn(alerts)
}

func (m *notifierMock) Send(message string) error {
	m.sent = append(m.sent, message)
	return nil
}

func oneAlert(severity observability.AlertSeverity, message string) func() ([]observability.Alert, error) {
	return func() ([]observability.Alert, error) {
		return []observability.Alert{
			{Severity: severity, Message: message, TriggeredAt: time.Now().UTC()},
		}, nil
	}
}

func TestAlertsCmd_NilEngine(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()
	AlertEngine = nil

	err := alertsCmd.RunE(alertsCmd, []string{})
	if err == nil {
		t.Fatal("expected error when AlertEngine is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlertsCmd_NoAlerts(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return nil, nil
		},
	}

	var buf bytes.Buffer
	alertsCmd.SetOut(&buf)
	defer alertsCmd.SetOut(nil)

	if err := alertsCmd.RunE(alertsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No active alerts.") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestAlertsCmd_WithAlerts(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return []observability.Alert{
				{Severity: observability.SeverityHigh, Message: `task "Pay rent" was due 2026-03-01`, TriggeredAt: time.Now().UTC()},
				{Severity: observability.SeverityLow, Message: "25 tasks are pending", TriggeredAt: time.Now().UTC()},
			}, nil
		},
	}

	var buf bytes.Buffer
	alertsCmd.SetOut(&buf)
	defer alertsCmd.SetOut(nil)

	if err := alertsCmd.RunE(alertsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"2 active alert(s)", "[HIGH]", "[LOW]", "Pay rent"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAlertsCmd_EvaluateError(t *testing.T) {
	orig := AlertEngine
	defer func() { AlertEngine = orig }()

	AlertEngine = &alertsMock{
		evaluateFn: func() ([]observability.Alert, error) {
			return nil, fmt.Errorf("no task source")
		},
	}

	err := alertsCmd.RunE(alertsCmd, []string{})
	if err == nil {
		t.Fatal("expected error from Evaluate")
	}
	if !strings.Contains(err.Error(), "evaluating alerts") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlertsCmd_NotifyWithoutNotifier(t *testing.T) {
	origEngine := AlertEngine
	origNotifier := Notifier
	defer func() {
		AlertEngine = origEngine
		Notifier = origNotifier
	}()

	AlertEngine = &alertsMock{evaluateFn: oneAlert(observability.SeverityHigh, "overdue")}
	Notifier = nil

	_ = alertsCmd.Flags().Set("notify", "true")
	defer func() { _ = alertsCmd.Flags().Set("notify", "false") }()

	err := alertsCmd.RunE(alertsCmd, []string{})
	if err == nil {
		t.Fatal("expected error when notifier is nil")
	}
	if !strings.Contains(err.Error(), "notifier not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlertsCmd_NotifySuccess(t *testing.T) {
	origEngine := AlertEngine
	origNotifier := Notifier
	defer func() {
		AlertEngine = origEngine
		Notifier = origNotifier
	}()

	AlertEngine = &alertsMock{evaluateFn: oneAlert(observability.SeverityMedium, "due soon")}

	var notified []observability.Alert
	Notifier = &notifierMock{
		notifyFn: func(alerts []observability.Alert) error {
			notified = alerts
			return nil
		},
	}

	_ = alertsCmd.Flags().Set("notify", "true")
	defer func() { _ = alertsCmd.Flags().Set("notify", "false") }()

	if err := alertsCmd.RunE(alertsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notified) != 1 {
		t.Errorf("expected Notify with 1 alert, got %d", len(notified))
	}
}

func TestAlertsCmd_NotifyError(t *testing.T) {
	origEngine := AlertEngine
	origNotifier := Notifier
	defer func() {
		AlertEngine = origEngine
		Notifier = origNotifier
	}()

	AlertEngine = &alertsMock{evaluateFn: oneAlert(observability.SeverityLow, "too many pending")}
	Notifier = &notifierMock{
		notifyFn: func(alerts []observability.Alert) error {
			return fmt.Errorf("webhook failed")
		},
	}

	_ = alertsCmd.Flags().Set("notify", "true")
	defer func() { _ = alertsCmd.Flags().Set("notify", "false") }()

	err := alertsCmd.RunE(alertsCmd, []string{})
	if err == nil {
		t.Fatal("expected error from Notify")
	}
	if !strings.Contains(err.Error(), "sending alert notification") {
		t.Errorf("unexpected error: %v", err)
	}
}
