package core

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/focusboard/pkg/models"
)

// Messages shown when an interval expires.
const (
	WorkCompleteMessage  = "Work session complete! Take a 5-minute break."
	BreakCompleteMessage = "Break is over! Ready to focus again."
)

// DefaultTransitionDelay is how long an expired interval stays at 00:00
// before the timer switches mode.
const DefaultTransitionDelay = time.Second

// TimerEventType defines the type of TimerEngine event.
type TimerEventType string

const (
	TimerEventTick        TimerEventType = "tick"
	TimerEventStateChange TimerEventType = "state_change"
	TimerEventExpired     TimerEventType = "expired"
	TimerEventTransition  TimerEventType = "transition"
)

// TimerEvent is a TimerEngine update for observers.
type TimerEvent struct {
	Type  TimerEventType
	State models.TimerState
	Stats models.Statistics
	At    time.Time
}

// TimerOptions contains runtime options for a TimerEngine.
type TimerOptions struct {
	// Scheduler drives the countdown; defaults to the wall clock.
	Scheduler Scheduler
	// TransitionDelay defaults to DefaultTransitionDelay when not positive.
	TransitionDelay time.Duration
	Sink            MessageSink
	Events          EventLogger
	// OnError receives persistence failures raised on the tick path, where
	// there is no caller to return them to.
	OnError func(error)
}

// TimerEngine is the work/break countdown state machine. Its state lives only
// in memory; the statistics counters are persisted on every work expiry.
type TimerEngine struct {
	mu     sync.Mutex
	kv     KeyValueStore
	opts   TimerOptions
	state  models.TimerState
	stats  models.Statistics
	events *Broadcaster[TimerEvent]

	// tickGen invalidates ticks that were in flight when the timer paused.
	tickGen  uint64
	stopTick func()

	// transitionGen identifies the pending post-expiry mode switch, if any.
	transitionGen     uint64
	pendingTransition bool
	stopTransition    func()
}

// NewTimerEngine creates a TimerEngine in work mode with a full countdown and
// reads the statistics counters from kv. Missing or malformed counters read
// as zero.
func NewTimerEngine(kv KeyValueStore, opts TimerOptions) *TimerEngine {
	if opts.Scheduler == nil {
		opts.Scheduler = NewRealScheduler()
	}
	if opts.TransitionDelay <= 0 {
		opts.TransitionDelay = DefaultTransitionDelay
	}
	return &TimerEngine{
		kv:    kv,
		opts:  opts,
		state: models.DefaultTimerState(),
		stats: models.Statistics{
			CompletedSessions: readCounter(kv, KeyCompletedSessions),
			FocusedMinutes:    readCounter(kv, KeyFocusedMinutes),
		},
		events: NewBroadcaster[TimerEvent](),
	}
}

func readCounter(kv KeyValueStore, key string) int {
	raw, ok := kv.Get(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Subscribe registers a new observer channel.
func (e *TimerEngine) Subscribe(buffer int) <-chan TimerEvent {
	return e.events.Subscribe(buffer)
}

// Unsubscribe removes an observer channel returned by Subscribe.
func (e *TimerEngine) Unsubscribe(ch <-chan TimerEvent) {
	e.events.Unsubscribe(ch)
}

// State returns a snapshot of the countdown.
func (e *TimerEngine) State() models.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Statistics returns a snapshot of the lifetime counters.
func (e *TimerEngine) Statistics() models.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Start begins the countdown. It is a no-op while running, and while an
// expired interval is waiting for its mode transition.
func (e *TimerEngine) Start() {
	e.mu.Lock()
	if e.state.Running || e.state.RemainingSeconds <= 0 {
		e.mu.Unlock()
		return
	}
	e.state.Running = true
	e.tickGen++
	gen := e.tickGen
	e.stopTick = e.opts.Scheduler.Every(time.Second, func() { e.tick(gen) })
	state := e.state
	e.emitLocked(TimerEventStateChange)
	e.mu.Unlock()

	logEvent(e.opts.Events, "timer.started", timerEventData(state))
}

// Pause halts the countdown. Once Pause returns no further decrement lands.
func (e *TimerEngine) Pause() {
	e.mu.Lock()
	if !e.state.Running {
		e.mu.Unlock()
		return
	}
	e.pauseLocked()
	state := e.state
	e.emitLocked(TimerEventStateChange)
	e.mu.Unlock()

	logEvent(e.opts.Events, "timer.paused", timerEventData(state))
}

// Reset pauses and restores the full duration of the current mode.
func (e *TimerEngine) Reset() {
	e.mu.Lock()
	e.pauseLocked()
	e.cancelTransitionLocked()
	e.state.RemainingSeconds = e.state.Mode.DurationSeconds()
	state := e.state
	e.emitLocked(TimerEventStateChange)
	e.mu.Unlock()

	logEvent(e.opts.Events, "timer.reset", timerEventData(state))
}

// SwitchMode pauses, sets the mode and restores that mode's full duration,
// even when the mode does not change.
func (e *TimerEngine) SwitchMode(mode models.TimerMode) error {
	if !mode.Valid() {
		return &ValidationError{Field: "mode", Message: "must be work or break"}
	}
	e.mu.Lock()
	e.cancelTransitionLocked()
	e.switchModeLocked(mode)
	state := e.state
	e.emitLocked(TimerEventStateChange)
	e.mu.Unlock()

	logEvent(e.opts.Events, "timer.mode_switched", timerEventData(state))
	return nil
}

// Close stops the countdown and any pending transition and closes observers.
func (e *TimerEngine) Close() {
	e.mu.Lock()
	e.pauseLocked()
	e.cancelTransitionLocked()
	e.mu.Unlock()
	e.events.Close()
}

// tick advances the countdown by one second. Ticks from a cancelled
// generation are dropped.
func (e *TimerEngine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.tickGen || !e.state.Running {
		e.mu.Unlock()
		return
	}

	e.state.RemainingSeconds--
	if e.state.RemainingSeconds < 0 {
		e.state.RemainingSeconds = 0
	}
	if e.state.RemainingSeconds > 0 {
		e.emitLocked(TimerEventTick)
		e.mu.Unlock()
		return
	}

	e.expireLocked()
}

// expireLocked handles the countdown reaching zero. It is entered with e.mu
// held and releases it: the message is displayed before the transition is
// scheduled so the 00:00 state is always observable first.
func (e *TimerEngine) expireLocked() {
	e.pauseLocked()
	expired := e.state.Mode

	var persistErr error
	message := BreakCompleteMessage
	if expired == models.ModeWork {
		e.stats.CompletedSessions++
		e.stats.FocusedMinutes += models.FocusCreditMinutes
		persistErr = e.persistStatsLocked()
		message = WorkCompleteMessage
	}

	e.transitionGen++
	gen := e.transitionGen
	e.pendingTransition = true
	stats := e.stats
	e.emitLocked(TimerEventExpired)
	e.mu.Unlock()

	logEvent(e.opts.Events, "timer.expired", map[string]any{
		"mode":               string(expired),
		"completed_sessions": stats.CompletedSessions,
		"focused_minutes":    stats.FocusedMinutes,
	})
	if persistErr != nil {
		logEvent(e.opts.Events, "stats.persist_failed", map[string]any{"error": persistErr.Error()})
		if e.opts.OnError != nil {
			e.opts.OnError(persistErr)
		}
	}
	if e.opts.Sink != nil {
		e.opts.Sink.DisplayMessage(message)
	}

	e.mu.Lock()
	if e.pendingTransition && e.transitionGen == gen {
		next := expired.Other()
		e.stopTransition = e.opts.Scheduler.After(e.opts.TransitionDelay, func() { e.transition(gen, next) })
	}
	e.mu.Unlock()
}

func (e *TimerEngine) transition(gen uint64, mode models.TimerMode) {
	e.mu.Lock()
	if !e.pendingTransition || e.transitionGen != gen {
		e.mu.Unlock()
		return
	}
	e.pendingTransition = false
	e.stopTransition = nil
	e.switchModeLocked(mode)
	state := e.state
	e.emitLocked(TimerEventTransition)
	e.mu.Unlock()

	logEvent(e.opts.Events, "timer.transitioned", timerEventData(state))
}

func (e *TimerEngine) switchModeLocked(mode models.TimerMode) {
	e.pauseLocked()
	e.state.Mode = mode
	e.state.RemainingSeconds = mode.DurationSeconds()
}

func (e *TimerEngine) pauseLocked() {
	if !e.state.Running {
		return
	}
	e.state.Running = false
	e.tickGen++
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (e *TimerEngine) cancelTransitionLocked() {
	if !e.pendingTransition {
		return
	}
	e.pendingTransition = false
	e.transitionGen++
	if e.stopTransition != nil {
		e.stopTransition()
		e.stopTransition = nil
	}
}

// persistStatsLocked writes both counters. Both writes are attempted; the
// first failure is returned.
func (e *TimerEngine) persistStatsLocked() error {
	var firstErr error
	writes := []struct {
		key   string
		value int
	}{
		{KeyCompletedSessions, e.stats.CompletedSessions},
		{KeyFocusedMinutes, e.stats.FocusedMinutes},
	}
	for _, w := range writes {
		if err := e.kv.Set(w.key, strconv.Itoa(w.value)); err != nil && firstErr == nil {
			firstErr = &PersistenceError{Op: "save", Key: w.key, Err: err}
		}
	}
	return firstErr
}

func (e *TimerEngine) emitLocked(t TimerEventType) {
	e.events.Publish(TimerEvent{
		Type:  t,
		State: e.state,
		Stats: e.stats,
		At:    time.Now(),
	})
}

func timerEventData(s models.TimerState) map[string]any {
	return map[string]any{
		"mode":              string(s.Mode),
		"remaining_seconds": s.RemainingSeconds,
		"running":           s.Running,
	}
}
