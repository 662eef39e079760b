// Package runner executes scrape workers as child processes and drives
// their sessions from running to a terminal state.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/use-agent/bannerscout/models"
	"github.com/use-agent/bannerscout/session"
	"github.com/use-agent/bannerscout/webhook"
)

// progressPattern matches worker status lines: "[*] ...", "[+] ...", "[-] ...".
var progressPattern = regexp.MustCompile(`^\[[*+\-]\]`)

// outputExcerpt is how much stdout is logged when no result is found.
const outputExcerpt = 500

// Config controls worker execution.
type Config struct {
	Command       string
	Args          []string
	Dir           string
	Env           []string // appended to the server's environment
	Timeout       time.Duration
	MaxConcurrent int
}

// Notifier delivers terminal-state webhooks.
type Notifier interface {
	DeliverAsync(url, secret string, event *webhook.Event)
}

// Runner starts scrapes and owns their sessions until they finish.
type Runner struct {
	cfg      Config
	registry *session.Registry
	notifier Notifier
	sem      *semaphore.Weighted

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Int64
}

// New creates a Runner. notifier may be nil.
func New(cfg Config, registry *session.Registry, notifier Notifier) *Runner {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cfg:      cfg,
		registry: registry,
		notifier: notifier,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start validates req, registers a running session and launches its
// worker in the background. It returns without waiting for the scrape.
func (r *Runner) Start(req models.ScrapeRequest) (string, error) {
	if err := validateURL(req.URL); err != nil {
		return "", err
	}
	req.Defaults()

	loc, ok := models.LocationByID(*req.Location)
	if !ok {
		return "", models.NewValidationError("invalid location (must be 1-10)")
	}

	snap, err := r.registry.Create(session.Params{
		URL:           req.URL,
		Location:      loc.Code,
		Headless:      *req.Headless,
		WebhookURL:    req.WebhookURL,
		WebhookSecret: req.WebhookSecret,
	})
	if err != nil {
		if errors.Is(err, session.ErrFull) {
			return "", models.NewScrapeError(models.ErrCodeBusy, "too many scrapes in progress, try again later", err)
		}
		return "", models.NewScrapeError(models.ErrCodeInternal, "failed to create session", err)
	}

	slog.Info("scrape session started",
		"session_id", snap.ID,
		"url", req.URL,
		"location", loc.Code,
		"headless", *req.Headless,
	)

	r.wg.Add(1)
	go r.run(snap.ID, snap.Params, loc.ID)

	return snap.ID, nil
}

// Running returns the number of workers currently executing.
func (r *Runner) Running() int {
	return int(r.running.Load())
}

// Shutdown kills running workers and waits for their sessions to settle
// or for ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return models.NewValidationError("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewValidationError("invalid URL format")
	}
	return nil
}

// run is the single owner of one session while it is running.
func (r *Runner) run(id string, p session.Params, locationID int) {
	defer r.wg.Done()

	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		r.fail(id, p, "scrape cancelled: server shutting down")
		return
	}
	defer r.sem.Release(1)

	r.running.Add(1)
	defer r.running.Add(-1)

	ctx := r.ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(r.ctx, r.cfg.Timeout)
		defer cancel()
	}

	result, failure := r.execute(ctx, id, p, locationID)
	if failure != "" {
		r.fail(id, p, failure)
		return
	}

	snap, err := r.registry.Complete(id, result)
	if err != nil {
		slog.Warn("complete session", "session_id", id, "error", err)
		return
	}
	slog.Info("scrape session completed",
		"session_id", id,
		"homepage", len(result.Homepage),
		"promotions", len(result.Promotions),
		"duration", snap.FinishedAt.Sub(snap.StartedAt),
	)
	r.notify(webhook.EventScrapeCompleted, snap)
}

// execute runs the worker and returns either a result or a failure message.
func (r *Runner) execute(ctx context.Context, id string, p session.Params, locationID int) (*models.ScrapeResult, string) {
	args := slices.Clone(r.cfg.Args)
	args = append(args,
		"--url", p.URL,
		"--location", strconv.Itoa(locationID),
		"--headless", strconv.FormatBool(p.Headless),
		"--json",
	)

	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	cmd.Dir = r.cfg.Dir
	if len(r.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), r.cfg.Env...)
	}
	cmd.WaitDelay = 5 * time.Second

	msgs := make(chan message, 64)
	stdout := &lineWriter{out: msgs}
	cmd.Stdout = stdout
	cmd.Stderr = &chunkWriter{out: msgs}

	if err := cmd.Start(); err != nil {
		slog.Error("worker failed to start", "session_id", id, "command", r.cfg.Command, "error", err)
		return nil, fmt.Sprintf("failed to start worker: %v", err)
	}

	go func() {
		err := cmd.Wait()
		stdout.Flush()
		msgs <- message{kind: workerExited, err: err}
		close(msgs)
	}()

	var out, errOut strings.Builder
	var waitErr error
	for m := range msgs {
		switch m.kind {
		case stdoutLine:
			out.WriteString(m.text)
			out.WriteByte('\n')
			r.recordProgress(id, m.text)
		case stderrChunk:
			errOut.WriteString(m.text)
		case workerExited:
			waitErr = m.err
		}
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		slog.Warn("worker timed out", "session_id", id, "timeout", r.cfg.Timeout)
		return nil, fmt.Sprintf("worker timed out after %s", r.cfg.Timeout)
	case r.ctx.Err() != nil:
		return nil, "scrape cancelled: server shutting down"
	case waitErr == nil:
		if res, ok := ExtractResult(out.String()); ok {
			return res, ""
		}
		excerpt := out.String()
		if len(excerpt) > outputExcerpt {
			excerpt = excerpt[:outputExcerpt]
		}
		slog.Error("no result in worker output", "session_id", id, "output", excerpt)
		return nil, "no valid result found in output"
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if msg := strings.TrimSpace(errOut.String()); msg != "" {
			return nil, msg
		}
		return nil, fmt.Sprintf("worker exited with code %d", exitErr.ExitCode())
	}
	return nil, waitErr.Error()
}

func (r *Runner) recordProgress(id, line string) {
	line = strings.TrimSpace(line)
	if line == "" || !progressPattern.MatchString(line) {
		return
	}
	entry := models.ProgressEntry{Timestamp: time.Now(), Message: line}
	if err := r.registry.AppendProgress(id, entry); err != nil {
		slog.Debug("drop progress line", "session_id", id, "error", err)
	}
}

func (r *Runner) fail(id string, p session.Params, msg string) {
	snap, err := r.registry.Fail(id, msg)
	if err != nil {
		slog.Warn("fail session", "session_id", id, "error", err)
		return
	}
	slog.Warn("scrape session failed", "session_id", id, "url", p.URL, "error", msg)
	r.notify(webhook.EventScrapeFailed, snap)
}

func (r *Runner) notify(eventType string, snap session.Snapshot) {
	if r.notifier == nil || snap.Params.WebhookURL == "" {
		return
	}
	r.notifier.DeliverAsync(snap.Params.WebhookURL, snap.Params.WebhookSecret, &webhook.Event{
		Type:      eventType,
		SessionID: snap.ID,
		Timestamp: time.Now().Unix(),
		Data:      snap.Response(),
	})
}
