// Package crawler implements the incremental tree crawler: recursive
// traversal of root items and their nested replies under depth, score, and
// relevance rules, with content-hash change detection, cross-pass discovery
// merging, and a persisted adaptive rate governor gating every provider call.
package crawler

import (
	"context"
	"time"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/logger"
	"github.com/jonesrussell/threadcrawl/internal/ratelimit"
	"github.com/jonesrussell/threadcrawl/internal/record"
	"github.com/jonesrussell/threadcrawl/internal/relevance"
	"github.com/jonesrussell/threadcrawl/internal/source"
)

// Crawler drives discovery passes over configured scopes. One crawl run is a
// single logical thread of control; the traversal is depth-first and
// synchronous because the shared request budget is the dominant constraint.
type Crawler struct {
	source   source.Source
	governor *ratelimit.Governor
	records  record.Store
	filter   *relevance.Filter
	cfg      Config
	log      logger.Interface

	// now is injected in tests.
	now func() time.Time
}

// New creates a crawler. The governor and record store carry all persistent
// state; the crawler itself is stateless between runs.
func New(
	src source.Source,
	governor *ratelimit.Governor,
	records record.Store,
	cfg Config,
	log logger.Interface,
) *Crawler {
	return &Crawler{
		source:   src,
		governor: governor,
		records:  records,
		filter:   relevance.New(cfg.Keywords),
		cfg:      cfg,
		log:      log.WithComponent("crawler"),
		now:      time.Now,
	}
}

// runState accumulates per-run stats and the stop decision.
type runState struct {
	deadline time.Time
	stats    domain.RunStats
}

func newRunState(deadline time.Time) *runState {
	return &runState{
		deadline: deadline,
		stats:    domain.RunStats{StopReason: domain.StopNone},
	}
}

// deadlineExceeded reports whether the caller-supplied deadline has passed.
func (st *runState) deadlineExceeded(now time.Time) bool {
	return !st.deadline.IsZero() && now.After(st.deadline)
}

// stop records the first stop reason; later reasons do not overwrite it.
func (st *runState) stop(reason domain.StopReason) {
	if st.stats.StopReason == domain.StopNone {
		st.stats.StoppedEarly = true
		st.stats.StopReason = reason
	}
}

// stopped reports whether the run must not start new work.
func (st *runState) stopped() bool {
	return st.stats.StoppedEarly
}

// admit gates one provider request through the governor, translating a
// denied admission into the run-stopping sentinel and counting admitted
// requests.
func (c *Crawler) admit(ctx context.Context, st *runState) error {
	decision, err := c.governor.Admit(ctx)
	if err != nil {
		return err
	}
	if decision == ratelimit.DeniedDailyCap {
		return errDailyCapped
	}
	st.stats.RequestsMade++
	return nil
}
