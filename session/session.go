// Package session keeps the in-memory state of scrape sessions.
package session

import (
	"sync"
	"time"

	"github.com/use-agent/bannerscout/models"
)

// Params describe a scrape at creation time.
type Params struct {
	URL      string
	Location string
	Headless bool

	WebhookURL    string
	WebhookSecret string
}

// Session is one scrape. Its fields are only touched under mu, and it
// becomes immutable once it leaves the running state.
type Session struct {
	mu sync.Mutex

	id         string
	params     Params
	status     models.SessionStatus
	progress   []models.ProgressEntry
	result     *models.ScrapeResult
	errMsg     string
	startedAt  time.Time
	finishedAt time.Time
}

// Snapshot is a point-in-time copy of a session that is safe to hand out.
type Snapshot struct {
	ID         string
	Params     Params
	Status     models.SessionStatus
	Progress   []models.ProgressEntry
	Result     *models.ScrapeResult
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := make([]models.ProgressEntry, len(s.progress))
	copy(progress, s.progress)

	return Snapshot{
		ID:         s.id,
		Params:     s.params,
		Status:     s.status,
		Progress:   progress,
		Result:     s.result,
		Error:      s.errMsg,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}

// Duration is the run time of a completed session; nil otherwise.
func (s Snapshot) Duration() *time.Duration {
	if s.Status != models.StatusCompleted {
		return nil
	}
	d := s.FinishedAt.Sub(s.StartedAt)
	return &d
}

// Response renders the snapshot for GET /api/scrape/:id.
func (s Snapshot) Response() models.SessionResponse {
	resp := models.SessionResponse{
		ID:       s.ID,
		URL:      s.Params.URL,
		Location: s.Params.Location,
		Status:   s.Status,
		Progress: s.Progress,
		Results:  s.Result,
	}
	if resp.Progress == nil {
		resp.Progress = []models.ProgressEntry{}
	}
	if s.Status == models.StatusFailed {
		msg := s.Error
		resp.Error = &msg
	}
	if d := s.Duration(); d != nil {
		ms := d.Milliseconds()
		resp.Duration = &ms
	}
	return resp
}
