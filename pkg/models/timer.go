package models

import "fmt"

// TimerMode is the interval type the focus timer is counting down.
type TimerMode string

const (
	ModeWork  TimerMode = "work"
	ModeBreak TimerMode = "break"
)

// Fixed interval lengths and the focus credit granted per work interval.
const (
	WorkDurationSeconds  = 25 * 60
	BreakDurationSeconds = 5 * 60
	FocusCreditMinutes   = 25
)

// Valid reports whether m is a known timer mode.
func (m TimerMode) Valid() bool {
	return m == ModeWork || m == ModeBreak
}

// DurationSeconds returns the full countdown length for the mode.
func (m TimerMode) DurationSeconds() int {
	if m == ModeBreak {
		return BreakDurationSeconds
	}
	return WorkDurationSeconds
}

// Other returns the mode the timer moves to after m expires.
func (m TimerMode) Other() TimerMode {
	if m == ModeWork {
		return ModeBreak
	}
	return ModeWork
}

// ParseTimerMode converts user input to a TimerMode.
func ParseTimerMode(s string) (TimerMode, error) {
	m := TimerMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid timer mode %q: must be work or break", s)
	}
	return m, nil
}

// TimerState is a snapshot of the countdown. It is never persisted.
type TimerState struct {
	Mode             TimerMode `json:"mode"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Running          bool      `json:"running"`
}

// DefaultTimerState is the state after process start.
func DefaultTimerState() TimerState {
	return TimerState{Mode: ModeWork, RemainingSeconds: WorkDurationSeconds}
}

// Display renders the remaining time as MM:SS.
func (s TimerState) Display() string {
	return fmt.Sprintf("%02d:%02d", s.RemainingSeconds/60, s.RemainingSeconds%60)
}

// Progress returns the elapsed fraction of the current interval in [0, 1].
func (s TimerState) Progress() float64 {
	total := s.Mode.DurationSeconds()
	if total <= 0 {
		return 1
	}
	p := float64(total-s.RemainingSeconds) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Statistics are the persisted lifetime focus counters.
type Statistics struct {
	CompletedSessions int `json:"completed_sessions"`
	FocusedMinutes    int `json:"focused_minutes"`
}

// FocusedDisplay renders the focused minutes as "Xh Ym".
func (s Statistics) FocusedDisplay() string {
	return fmt.Sprintf("%dh %dm", s.FocusedMinutes/60, s.FocusedMinutes%60)
}
