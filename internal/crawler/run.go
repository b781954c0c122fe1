package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/threadcrawl/internal/domain"
)

// Run executes one full crawl: a browse pass then a search pass per scope,
// sequentially, sharing one governor and one record store. It always returns
// a structured result once any provider work has started; the only error it
// returns is a configuration problem detected before the first Source call.
//
// The caller's context deadline (when set) is honored before each new pass
// and each new root item; on expiry the run returns whatever has been
// accumulated rather than failing.
func (c *Crawler) Run(ctx context.Context) (*domain.RunResult, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawler configuration: %w", err)
	}

	deadline, _ := ctx.Deadline()
	st := newRunState(deadline)

	runID := uuid.NewString()
	log := c.log.WithRunID(runID)
	startedAt := c.now()

	log.Info("Starting crawl run",
		"scopes", c.cfg.Scopes,
		"keywords", len(c.cfg.Keywords),
		"incremental", c.cfg.Incremental)

	var browse, search []*domain.Post
	for _, scope := range c.cfg.Scopes {
		if st.stopped() {
			break
		}

		posts, err := c.browsePass(ctx, st, scope)
		if err != nil {
			log.Error("Browse pass failed", "scope", scope, "error", err)
			st.stop(domain.StopFatalError)
			break
		}
		browse = append(browse, posts...)

		if st.stopped() || len(c.cfg.Keywords) == 0 {
			continue
		}

		posts, err = c.searchPass(ctx, st, scope)
		if err != nil {
			log.Error("Search pass failed", "scope", scope, "error", err)
			st.stop(domain.StopFatalError)
			break
		}
		search = append(search, posts...)
	}

	merged := Merge(browse, search)
	st.stats.ItemsDiscovered = len(merged) + totalReplies(merged)

	if err := c.governor.Flush(ctx); err != nil {
		log.Error("Failed to flush rate limit state", "error", err)
	}

	result := &domain.RunResult{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: c.now(),
		Scopes:     c.cfg.Scopes,
		Keywords:   c.cfg.Keywords,
		Posts:      merged,
		Stats:      st.stats,
	}

	log.Info("Crawl run complete",
		"posts", len(merged),
		"replies", result.TotalReplies(),
		"requests", st.stats.RequestsMade,
		"skipped_unchanged", st.stats.ItemsSkippedUnchanged,
		"throttle_events", st.stats.ThrottleEvents,
		"stop_reason", st.stats.StopReason,
		"duration", c.now().Sub(startedAt).Round(time.Millisecond))

	return result, nil
}

// totalReplies counts kept replies across posts, nested included.
func totalReplies(posts []*domain.Post) int {
	total := 0
	for _, p := range posts {
		total += domain.CountReplies(p.Replies)
	}
	return total
}
