package models

import "time"

// SessionStatus is the lifecycle state of a scrape session.
// Running is the only non-terminal state.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "error"
)

// Terminal reports whether no further transition is allowed.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProgressEntry is one worker progress line with its capture time.
type ProgressEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}
