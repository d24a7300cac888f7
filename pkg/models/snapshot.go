package models

// Snapshot is a read-only view of the whole dashboard handed to presentation.
type Snapshot struct {
	Tasks    []Task     `json:"tasks"`
	Counts   TaskCounts `json:"counts"`
	Timer    TimerState `json:"timer"`
	Stats    Statistics `json:"stats"`
	DarkMode bool       `json:"dark_mode"`
}
