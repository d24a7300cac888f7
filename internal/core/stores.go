package core

// KeyValueStore is the persistence gateway the core services write through.
// It is satisfied by storage.StateStore; defining it here keeps core
// independent of the storage package.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Keys of the persisted state layout.
const (
	KeyTasks             = "tasks"
	KeyCompletedSessions = "completed_sessions"
	KeyFocusedMinutes    = "focused_minutes"
	KeyDarkMode          = "dark_mode"
)

// MessageSink receives user-facing notifications such as "work session
// complete". It is informational only.
type MessageSink interface {
	DisplayMessage(message string)
}

// MessageSinkFunc adapts a function to MessageSink.
type MessageSinkFunc func(message string)

func (f MessageSinkFunc) DisplayMessage(message string) { f(message) }

// MessageSinks fans a message out to every non-nil sink in order.
type MessageSinks []MessageSink

func (s MessageSinks) DisplayMessage(message string) {
	for _, sink := range s {
		if sink != nil {
			sink.DisplayMessage(message)
		}
	}
}
