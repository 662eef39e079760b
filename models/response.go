package models

import "time"

// StartResponse is the immediate response for POST /api/scrape.
type StartResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// SessionResponse is the response for GET /api/scrape/:id.
type SessionResponse struct {
	ID       string          `json:"id"`
	URL      string          `json:"url"`
	Location string          `json:"location"`
	Status   SessionStatus   `json:"status"`
	Progress []ProgressEntry `json:"progress"`
	Results  *ScrapeResult   `json:"results"`
	Error    *string         `json:"error"`

	// Duration is the elapsed time in milliseconds, only set once completed.
	Duration *int64 `json:"duration"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status         string    `json:"status"`
	ActiveSessions int       `json:"activeSessions"`
	RunningWorkers int       `json:"runningWorkers"`
	Version        string    `json:"version"`
	Uptime         string    `json:"uptime"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stream event types sent on GET /api/scrape/:id/stream.
const (
	StreamEventProgress = "progress"
	StreamEventDone     = "done"
)

// StreamEvent is one websocket message of a session stream. Progress
// events carry one new entry; the final done event carries the whole
// session.
type StreamEvent struct {
	Type     string           `json:"type"`
	Progress *ProgressEntry   `json:"progress,omitempty"`
	Session  *SessionResponse `json:"session,omitempty"`
}
