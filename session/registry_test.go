package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bannerscout/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(opts Options) (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	opts.Now = clock.Now
	r := NewRegistry(opts)
	return r, clock
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r, _ := newTestRegistry(Options{})
	defer r.Close()

	s, err := r.Create(Params{URL: "https://x.test", Location: "US", Headless: true})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, models.StatusRunning, s.Status)
	assert.Empty(t, s.Progress)
	assert.Nil(t, s.Duration())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test", got.Params.URL)
	assert.Equal(t, 1, r.Count())

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_IDsAreUnique(t *testing.T) {
	r, _ := newTestRegistry(Options{})
	defer r.Close()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s, err := r.Create(Params{})
		require.NoError(t, err)
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}

func TestRegistry_CompleteIsTerminal(t *testing.T) {
	r, clock := newTestRegistry(Options{})
	defer r.Close()

	s, _ := r.Create(Params{URL: "https://x.test"})
	require.NoError(t, r.AppendProgress(s.ID, models.ProgressEntry{Message: "[*] one"}))

	clock.Advance(1500 * time.Millisecond)
	done, err := r.Complete(s.ID, &models.ScrapeResult{Homepage: []models.BannerRef{{Src: "a"}}})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.Duration())
	assert.Equal(t, 1500*time.Millisecond, *done.Duration())

	_, err = r.Fail(s.ID, "late failure")
	assert.ErrorIs(t, err, ErrTerminal)
	_, err = r.Complete(s.ID, &models.ScrapeResult{})
	assert.ErrorIs(t, err, ErrTerminal)
	assert.ErrorIs(t, r.AppendProgress(s.ID, models.ProgressEntry{Message: "[*] late"}), ErrTerminal)

	got, _ := r.Get(s.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Empty(t, got.Error)
	assert.Len(t, got.Progress, 1)
	assert.Len(t, got.Result.Homepage, 1)
}

func TestRegistry_FailHasNoDuration(t *testing.T) {
	r, _ := newTestRegistry(Options{})
	defer r.Close()

	s, _ := r.Create(Params{})
	failed, err := r.Fail(s.ID, "worker exited with code 2")
	require.NoError(t, err)

	resp := failed.Response()
	assert.Equal(t, models.StatusFailed, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "worker exited with code 2", *resp.Error)
	assert.Nil(t, resp.Duration)
	assert.Nil(t, resp.Results)
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r, _ := newTestRegistry(Options{})
	defer r.Close()

	s, _ := r.Create(Params{})
	require.NoError(t, r.AppendProgress(s.ID, models.ProgressEntry{Message: "[*] a"}))

	snap, _ := r.Get(s.ID)
	snap.Progress[0].Message = "mutated"

	require.NoError(t, r.AppendProgress(s.ID, models.ProgressEntry{Message: "[+] b"}))

	again, _ := r.Get(s.ID)
	assert.Equal(t, "[*] a", again.Progress[0].Message)
	assert.Equal(t, "[+] b", again.Progress[1].Message)
	assert.Len(t, snap.Progress, 1)
}

func TestRegistry_SweepEvictsOnlyExpiredTerminal(t *testing.T) {
	r, clock := newTestRegistry(Options{TTL: time.Hour})
	defer r.Close()

	running, _ := r.Create(Params{})
	old, _ := r.Create(Params{})
	_, err := r.Complete(old.ID, &models.ScrapeResult{})
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	fresh, _ := r.Create(Params{})
	_, err = r.Fail(fresh.ID, "boom")
	require.NoError(t, err)

	clock.Advance(45 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, err = r.Get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(running.ID)
	assert.NoError(t, err)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestRegistry_MaxSessionsEvictsOldestFinished(t *testing.T) {
	r, clock := newTestRegistry(Options{MaxSessions: 2})
	defer r.Close()

	a, _ := r.Create(Params{})
	b, _ := r.Create(Params{})

	_, err := r.Create(Params{})
	assert.ErrorIs(t, err, ErrFull, "running sessions are never evicted")

	r.Fail(b.ID, "x")
	clock.Advance(time.Second)
	r.Fail(a.ID, "y")

	c, err := r.Create(Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())

	_, err = r.Get(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(a.ID)
	assert.NoError(t, err)
	_, err = r.Get(c.ID)
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentAppends(t *testing.T) {
	r, _ := newTestRegistry(Options{})
	defer r.Close()

	s, _ := r.Create(Params{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.AppendProgress(s.ID, models.ProgressEntry{Message: "[*] tick"})
			r.Get(s.ID)
		}()
	}
	wg.Wait()

	got, _ := r.Get(s.ID)
	assert.Len(t, got.Progress, 50)
}
