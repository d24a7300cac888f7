package core

import (
	"strconv"
	"sync"
)

// Preferences holds persisted user interface settings.
type Preferences struct {
	mu       sync.Mutex
	kv       KeyValueStore
	darkMode bool
	events   EventLogger
}

// NewPreferences reads preferences from kv. Missing or malformed values use
// the defaults.
func NewPreferences(kv KeyValueStore, events EventLogger) *Preferences {
	p := &Preferences{kv: kv, events: events}
	if raw, ok := kv.Get(KeyDarkMode); ok {
		p.darkMode, _ = strconv.ParseBool(raw)
	}
	return p
}

// DarkMode reports whether the dark palette is selected.
func (p *Preferences) DarkMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.darkMode
}

// ToggleDarkMode flips and persists the palette, returning the new value.
// On a persistence failure the previous value is kept.
func (p *Preferences) ToggleDarkMode() (bool, error) {
	p.mu.Lock()
	next := !p.darkMode
	if err := p.kv.Set(KeyDarkMode, strconv.FormatBool(next)); err != nil {
		p.mu.Unlock()
		return p.DarkMode(), &PersistenceError{Op: "save", Key: KeyDarkMode, Err: err}
	}
	p.darkMode = next
	p.mu.Unlock()

	logEvent(p.events, "preferences.changed", map[string]any{"dark_mode": next})
	return next, nil
}
