package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/logger"
)

// memStore is an in-memory StateStore recording every save.
type memStore struct {
	state domain.RateLimitState
	saves int
}

func (s *memStore) Load(_ context.Context) (domain.RateLimitState, error) {
	return s.state, nil
}

func (s *memStore) Save(_ context.Context, state domain.RateLimitState) error {
	s.state = state
	s.saves++
	return nil
}

// testClock drives the governor deterministically: sleeps advance the clock
// instead of blocking.
type testClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestGovernor(t *testing.T, cfg Config, store *memStore) (*Governor, *testClock) {
	t.Helper()

	g, err := New(context.Background(), cfg, store, logger.NewNoOp())
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
	g.now = clock.Now
	g.sleep = clock.Sleep
	g.jitter = func(time.Duration) time.Duration { return 0 }
	return g, clock
}

func TestAdmit_EnforcesMinimumSpacing(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.PerMinute = 30 // 2s spacing
	g, clock := newTestGovernor(t, cfg, &memStore{})

	d, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Admitted, d)
	assert.Empty(t, clock.sleeps, "first call needs no spacing sleep")

	// Immediate second call must sleep the full spacing.
	d, err = g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Admitted, d)
	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 2*time.Second, clock.sleeps[0])
}

func TestAdmit_DailyCap(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.PerDay = 1000
	store := &memStore{state: domain.RateLimitState{
		DailyRequests: 999,
		WindowStart:   "2026-08-23",
	}}
	g, _ := newTestGovernor(t, cfg, store)

	// 999 -> 1000: still admitted.
	d, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Admitted, d)
	assert.Equal(t, 1000, g.State().DailyRequests)

	// At the cap: denied without blocking.
	d, err = g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DeniedDailyCap, d)
	assert.Equal(t, 1000, g.State().DailyRequests)
}

func TestAdmit_DailyWindowReset(t *testing.T) {
	t.Parallel()

	store := &memStore{state: domain.RateLimitState{
		DailyRequests: 700,
		WindowStart:   "2026-08-22", // yesterday relative to the test clock
		ThrottleHits:  3,
	}}
	g, _ := newTestGovernor(t, NewConfig(), store)

	d, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Admitted, d)

	state := g.State()
	assert.Equal(t, 1, state.DailyRequests, "counter resets then increments")
	assert.Equal(t, "2026-08-23", state.WindowStart)
	assert.Equal(t, 0, state.ThrottleHits, "fresh day clears escalation")
}

func TestAdmit_ResetHappensBeforeCapCheck(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.PerDay = 100
	store := &memStore{state: domain.RateLimitState{
		DailyRequests: 100, // capped yesterday
		WindowStart:   "2026-08-22",
	}}
	g, _ := newTestGovernor(t, cfg, store)

	d, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Admitted, d, "a new day must lift yesterday's cap")
}

func TestOnThrottle_EscalatesAndCaps(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.BackoffBase = 30 * time.Second
	cfg.BackoffCapMultiplier = 16
	cfg.MaxBackoff = 10 * time.Minute
	g, _ := newTestGovernor(t, cfg, &memStore{})

	var waits []time.Duration
	for i := 0; i < 7; i++ {
		waits = append(waits, g.OnThrottle(context.Background()))
	}

	// 2^hits escalation: 60s, 120s, 240s, 480s, then capped at 480s.
	expected := []time.Duration{
		60 * time.Second, 120 * time.Second, 240 * time.Second,
		480 * time.Second, 480 * time.Second, 480 * time.Second, 480 * time.Second,
	}
	assert.Equal(t, expected, waits)

	for i := 1; i < len(waits); i++ {
		assert.GreaterOrEqual(t, waits[i], waits[i-1],
			"waits must be non-decreasing")
	}
	for _, w := range waits {
		assert.LessOrEqual(t, w, cfg.MaxBackoff)
	}
	assert.Equal(t, 7, g.State().ThrottleHits)
}

func TestOnThrottle_ClampsToMaxBackoff(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.BackoffBase = 5 * time.Minute
	cfg.MaxBackoff = 8 * time.Minute
	g, _ := newTestGovernor(t, cfg, &memStore{})

	wait := g.OnThrottle(context.Background())
	assert.Equal(t, 8*time.Minute, wait)
}

func TestAdmit_BlocksThroughBackoffWindow(t *testing.T) {
	t.Parallel()

	g, clock := newTestGovernor(t, NewConfig(), &memStore{})

	wait := g.OnThrottle(context.Background())
	require.Positive(t, wait)

	d, err := g.Admit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Admitted, d)
	require.NotEmpty(t, clock.sleeps)
	assert.Equal(t, wait, clock.sleeps[0], "admit sleeps out the backoff window")

	// Window is cleared; the next admit only pays spacing.
	before := len(clock.sleeps)
	_, err = g.Admit(context.Background())
	require.NoError(t, err)
	assert.Len(t, clock.sleeps, before+1)
	assert.Less(t, clock.sleeps[before], time.Minute)
}

func TestPersistence_Batched(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.PersistEvery = 3
	store := &memStore{state: domain.RateLimitState{WindowStart: "2026-08-23"}}
	g, _ := newTestGovernor(t, cfg, store)

	for i := 0; i < 7; i++ {
		_, err := g.Admit(context.Background())
		require.NoError(t, err)
	}
	// Saves at the 3rd and 6th admits only.
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, 6, store.state.DailyRequests, "persisted value lags by design")

	require.NoError(t, g.Flush(context.Background()))
	assert.Equal(t, 7, store.state.DailyRequests)
}
