// Package ratelimit paces outbound provider requests against per-minute and
// per-day budgets and absorbs provider throttling with exponential backoff.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/logger"
)

// Default budgets, conservative relative to typical provider limits.
const (
	DefaultPerMinute            = 30
	DefaultPerDay               = 1000
	DefaultBackoffBase          = 30 * time.Second
	DefaultBackoffCapMultiplier = 16
	DefaultBackoffJitterMax     = 30 * time.Second
	DefaultMaxBackoff           = 10 * time.Minute
	// DefaultPersistEvery batches state persistence to bound write volume.
	DefaultPersistEvery = 10
)

// Decision is the outcome of an admission request.
type Decision int

const (
	// Admitted means the caller may issue one provider request now.
	Admitted Decision = iota
	// DeniedDailyCap means the daily budget is exhausted; the caller must
	// stop issuing requests until the next calendar day.
	DeniedDailyCap
)

// Config holds the governor budgets and backoff parameters.
type Config struct {
	PerMinute            int           `mapstructure:"per_minute"             yaml:"per_minute"`
	PerDay               int           `mapstructure:"per_day"                yaml:"per_day"`
	BackoffBase          time.Duration `mapstructure:"backoff_base"           yaml:"backoff_base"`
	BackoffCapMultiplier int           `mapstructure:"backoff_cap_multiplier" yaml:"backoff_cap_multiplier"`
	BackoffJitterMax     time.Duration `mapstructure:"backoff_jitter_max"     yaml:"backoff_jitter_max"`
	MaxBackoff           time.Duration `mapstructure:"max_backoff"            yaml:"max_backoff"`
	PersistEvery         int           `mapstructure:"persist_every"          yaml:"persist_every"`
}

// NewConfig returns a config populated with defaults.
func NewConfig() Config {
	return Config{
		PerMinute:            DefaultPerMinute,
		PerDay:               DefaultPerDay,
		BackoffBase:          DefaultBackoffBase,
		BackoffCapMultiplier: DefaultBackoffCapMultiplier,
		BackoffJitterMax:     DefaultBackoffJitterMax,
		MaxBackoff:           DefaultMaxBackoff,
		PersistEvery:         DefaultPersistEvery,
	}
}

// StateStore persists RateLimitState across process invocations.
type StateStore interface {
	Load(ctx context.Context) (domain.RateLimitState, error)
	Save(ctx context.Context, state domain.RateLimitState) error
}

// Governor is the rate-limit state machine. It is used from a single logical
// crawl sequence at a time; the persisted state survives restarts.
type Governor struct {
	cfg   Config
	store StateStore
	log   logger.Interface

	state        domain.RateLimitState
	lastAdmit    time.Time
	backoffUntil time.Time
	sinceSave    int

	// Injected for tests.
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration
}

// New loads persisted state and returns a ready governor.
func New(ctx context.Context, cfg Config, store StateStore, log logger.Interface) (*Governor, error) {
	if cfg.PerMinute <= 0 || cfg.PerDay <= 0 {
		return nil, fmt.Errorf("rate budgets must be positive: per_minute=%d per_day=%d",
			cfg.PerMinute, cfg.PerDay)
	}
	if cfg.PersistEvery <= 0 {
		cfg.PersistEvery = DefaultPersistEvery
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit state: %w", err)
	}

	g := &Governor{
		cfg:    cfg,
		store:  store,
		log:    log.WithComponent("ratelimit"),
		state:  state,
		now:    time.Now,
		sleep:  sleepContext,
		jitter: randomJitter,
	}
	return g, nil
}

// Admit gates one provider request. It blocks through any active backoff
// window, enforces minimum inter-call spacing, rolls the daily window, and
// returns DeniedDailyCap once the daily budget is spent.
func (g *Governor) Admit(ctx context.Context) (Decision, error) {
	if wait := g.backoffUntil.Sub(g.now()); wait > 0 {
		g.log.Info("In backoff window, waiting", "wait", wait.Round(time.Second))
		if err := g.sleep(ctx, wait); err != nil {
			return DeniedDailyCap, err
		}
		g.backoffUntil = time.Time{}
	}

	if err := g.rollDailyWindow(ctx); err != nil {
		return DeniedDailyCap, err
	}

	if g.state.DailyRequests >= g.cfg.PerDay {
		return DeniedDailyCap, nil
	}

	minSpacing := time.Minute / time.Duration(g.cfg.PerMinute)
	if elapsed := g.now().Sub(g.lastAdmit); !g.lastAdmit.IsZero() && elapsed < minSpacing {
		if err := g.sleep(ctx, minSpacing-elapsed); err != nil {
			return DeniedDailyCap, err
		}
	}

	g.lastAdmit = g.now()
	g.state.DailyRequests++
	g.sinceSave++
	if g.sinceSave >= g.cfg.PersistEvery {
		if err := g.persist(ctx); err != nil {
			return DeniedDailyCap, err
		}
	}

	return Admitted, nil
}

// OnThrottle records a caller-classified provider throttle signal and arms
// the backoff window. The wait is base * min(2^hits, capMultiplier) plus
// jitter, clamped to the configured maximum. It returns the wait duration.
func (g *Governor) OnThrottle(ctx context.Context) time.Duration {
	g.state.ThrottleHits++

	multiplier := 1
	for i := 0; i < g.state.ThrottleHits && multiplier < g.cfg.BackoffCapMultiplier; i++ {
		multiplier *= 2
	}
	if multiplier > g.cfg.BackoffCapMultiplier {
		multiplier = g.cfg.BackoffCapMultiplier
	}

	wait := g.cfg.BackoffBase*time.Duration(multiplier) + g.jitter(g.cfg.BackoffJitterMax)
	if wait > g.cfg.MaxBackoff {
		wait = g.cfg.MaxBackoff
	}
	g.backoffUntil = g.now().Add(wait)

	g.log.Warn("Provider throttled, backing off",
		"wait", wait.Round(time.Second),
		"throttle_hits", g.state.ThrottleHits,
		"daily_requests", g.state.DailyRequests)

	if err := g.persist(ctx); err != nil {
		g.log.Error("Failed to persist rate limit state", "error", err)
	}

	return wait
}

// Flush persists the counters. Called at run end so batched increments are
// never lost across invocations.
func (g *Governor) Flush(ctx context.Context) error {
	return g.persist(ctx)
}

// State returns a copy of the current counter state.
func (g *Governor) State() domain.RateLimitState {
	return g.state
}

// rollDailyWindow resets the daily counter exactly once when the current UTC
// date has advanced past the persisted window start. A fresh day also clears
// the throttle escalation counter.
func (g *Governor) rollDailyWindow(ctx context.Context) error {
	now := g.now().UTC()
	today := now.Format(domain.DailyWindowLayout)
	if g.state.WindowStart == today || now.Before(g.state.WindowDate()) {
		return nil
	}

	if g.state.WindowStart != "" {
		g.log.Info("New calendar day, resetting daily request counter",
			"previous_window", g.state.WindowStart,
			"previous_count", g.state.DailyRequests)
	}
	g.state.DailyRequests = 0
	g.state.ThrottleHits = 0
	g.state.WindowStart = today
	return g.persist(ctx)
}

// persist saves state and resets the batch counter.
func (g *Governor) persist(ctx context.Context) error {
	g.sinceSave = 0
	if err := g.store.Save(ctx, g.state); err != nil {
		return fmt.Errorf("failed to save rate limit state: %w", err)
	}
	return nil
}

// sleepContext sleeps for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randomJitter returns a uniform random duration in [0, max).
func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
