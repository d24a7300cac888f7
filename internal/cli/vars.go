package cli

import (
	"github.com/valter-silva-au/focusboard/internal/core"
	"github.com/valter-silva-au/focusboard/internal/observability"
)

// Board is the dashboard service, set during app initialization in app.go.
var Board *core.Dashboard

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
