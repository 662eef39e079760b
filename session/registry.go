package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/bannerscout/models"
)

var (
	// ErrNotFound is returned for an unknown or evicted session id.
	ErrNotFound = errors.New("session not found")

	// ErrTerminal is returned when mutating a session that already finished.
	ErrTerminal = errors.New("session already finished")

	// ErrFull is returned by Create when MaxSessions are all still running.
	ErrFull = errors.New("too many sessions in progress")
)

// Options configure retention.
type Options struct {
	// TTL is how long a finished session stays readable.
	TTL time.Duration

	// SweepInterval is how often expired sessions are evicted. Zero
	// disables the background sweeper.
	SweepInterval time.Duration

	// MaxSessions caps the number of held sessions. Zero means unbounded.
	MaxSessions int

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Registry owns every live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options

	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry creates a Registry and starts its sweeper.
func NewRegistry(opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		done:     make(chan struct{}),
	}
	if opts.SweepInterval > 0 && opts.TTL > 0 {
		go r.sweepLoop()
	}
	return r
}

// Create registers a new running session and returns its snapshot.
func (r *Registry) Create(p Params) (Snapshot, error) {
	s := &Session{
		id:        uuid.NewString(),
		params:    p,
		status:    models.StatusRunning,
		progress:  []models.ProgressEntry{},
		startedAt: r.opts.Now(),
	}

	r.mu.Lock()
	if r.opts.MaxSessions > 0 && len(r.sessions) >= r.opts.MaxSessions {
		if !r.evictOldestTerminalLocked() {
			r.mu.Unlock()
			return Snapshot{}, ErrFull
		}
	}
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s.snapshot(), nil
}

// Get returns a copy of the session.
func (r *Registry) Get(id string) (Snapshot, error) {
	s, err := r.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// AppendProgress adds one progress entry to a running session.
func (r *Registry) AppendProgress(id string, entry models.ProgressEntry) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return ErrTerminal
	}
	s.progress = append(s.progress, entry)
	return nil
}

// Complete moves a running session to completed with its result.
func (r *Registry) Complete(id string, result *models.ScrapeResult) (Snapshot, error) {
	return r.finish(id, func(s *Session) {
		s.status = models.StatusCompleted
		s.result = result
	})
}

// Fail moves a running session to the error state.
func (r *Registry) Fail(id string, msg string) (Snapshot, error) {
	return r.finish(id, func(s *Session) {
		s.status = models.StatusFailed
		s.errMsg = msg
	})
}

func (r *Registry) finish(id string, apply func(*Session)) (Snapshot, error) {
	s, err := r.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return Snapshot{}, ErrTerminal
	}
	apply(s)
	s.finishedAt = r.opts.Now()
	s.mu.Unlock()

	return s.snapshot(), nil
}

// Count returns the number of sessions held.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts finished sessions older than the TTL and returns how many
// were removed. Running sessions are never evicted.
func (r *Registry) Sweep() int {
	cutoff := r.opts.Now().Add(-r.opts.TTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		expired := s.status.Terminal() && s.finishedAt.Before(cutoff)
		s.mu.Unlock()
		if expired {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Close stops the sweeper.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Registry) lookup(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// evictOldestTerminalLocked drops the finished session with the earliest
// finish time. r.mu must be held.
func (r *Registry) evictOldestTerminalLocked() bool {
	var oldestID string
	var oldest time.Time
	for id, s := range r.sessions {
		s.mu.Lock()
		terminal, finished := s.status.Terminal(), s.finishedAt
		s.mu.Unlock()
		if !terminal {
			continue
		}
		if oldestID == "" || finished.Before(oldest) {
			oldestID, oldest = id, finished
		}
	}
	if oldestID == "" {
		return false
	}
	delete(r.sessions, oldestID)
	slog.Debug("evicted finished session at capacity", "session_id", oldestID)
	return true
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("expired sessions evicted", "count", n, "remaining", r.Count())
			}
		}
	}
}
