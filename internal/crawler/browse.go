package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/fingerprint"
	"github.com/jonesrussell/threadcrawl/internal/record"
	"github.com/jonesrussell/threadcrawl/internal/source"
)

// stableListings are listing types whose ordering is stable between runs.
// Only for these does an unchanged item imply everything after it was seen
// in the prior run; "hot" and "rising" reshuffle, so they are scanned fully.
var stableListings = map[string]struct{}{
	domain.ListingNew: {},
	domain.ListingTop: {},
}

// browsePass discovers posts for one scope via its listing endpoints,
// filtering by age, score, and keyword relevance, and crawling each kept
// post's reply tree. It returns the posts collected, however the pass ended.
func (c *Crawler) browsePass(
	ctx context.Context,
	st *runState,
	scope string,
) ([]*domain.Post, error) {
	log := c.log.WithScope(scope).With("pass", domain.PassBrowse)

	part, err := c.records.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl record for %s: %w", scope, err)
	}

	threshold := c.now().AddDate(0, 0, -c.cfg.DaysBack)
	var collected []*domain.Post

listings:
	for _, listingType := range c.cfg.Listings {
		if st.deadlineExceeded(c.now()) {
			st.stop(domain.StopDeadline)
			break
		}

		if admitErr := c.admit(ctx, st); admitErr != nil {
			c.notePassStop(st, admitErr)
			break
		}

		posts, listErr := c.source.ListCandidates(
			ctx, scope, listingType, threshold, c.cfg.PostsPerListing)
		if listErr != nil {
			switch {
			case source.IsThrottled(listErr):
				st.stats.ThrottleEvents++
				c.governor.OnThrottle(ctx)
				log.Warn("Throttled fetching listing, stopping pass",
					"listing", listingType)
				break listings
			case source.IsNotFound(listErr):
				log.Warn("Listing unavailable, skipping",
					"listing", listingType, "error", listErr)
				continue
			default:
				log.Warn("Transient error fetching listing, skipping",
					"listing", listingType, "error", listErr)
				continue
			}
		}

		for _, post := range posts {
			if st.deadlineExceeded(c.now()) {
				st.stop(domain.StopDeadline)
				break listings
			}
			if post.CreatedAt < threshold.Unix() {
				continue
			}
			if post.Score < c.cfg.MinPostScore {
				continue
			}
			if !c.filter.KeepPost(post.Title, post.Body) {
				continue
			}

			fp := fingerprint.Post(post)
			if c.cfg.Incremental && part.SeenPost(post.ID, fp) {
				st.stats.ItemsSkippedUnchanged++
				if _, stable := stableListings[listingType]; stable {
					// Ordered listing: everything after an unchanged
					// item was already seen in the prior run.
					log.Debug("Unchanged post in stable listing, stopping scan",
						"listing", listingType, "post_id", post.ID)
					continue listings
				}
				continue
			}

			kept, crawlErr := c.crawlPost(ctx, st, part, post, c.cfg.browseTreeParams())
			if kept != nil {
				part.PutPost(post.ID, fp, c.now())
				collected = append(collected, kept)
				c.checkpoint(ctx, part)
			}
			if crawlErr != nil {
				c.notePassStop(st, crawlErr)
				break listings
			}
		}
	}

	part.Touch(c.now())
	c.checkpoint(ctx, part)

	log.Info("Browse pass complete",
		"posts", len(collected),
		"replies", domain.CountReplies(flattenReplies(collected)))
	return collected, nil
}

// notePassStop translates a pass-control sentinel into run state. A daily
// cap or context error stops the whole run; a throttle stops only this pass.
func (c *Crawler) notePassStop(st *runState, err error) {
	switch {
	case errors.Is(err, errDailyCapped):
		st.stop(domain.StopDailyCap)
	case errors.Is(err, errPassThrottled):
		// Pass-local: the next pass's first admission blocks through
		// the backoff window and retries if the deadline allows.
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		st.stop(domain.StopDeadline)
	default:
		st.stop(domain.StopFatalError)
	}
}

// checkpoint persists the partition; persistence failures must not lose the
// crawl, so they are logged and the run carries on with in-memory state.
func (c *Crawler) checkpoint(ctx context.Context, part *record.Partition) {
	if err := c.records.Save(ctx, part); err != nil {
		c.log.Error("Failed to checkpoint crawl record",
			"scope", part.Scope, "error", err)
	}
}

// flattenReplies gathers all posts' top-level replies for counting.
func flattenReplies(posts []*domain.Post) []*domain.Reply {
	var all []*domain.Reply
	for _, p := range posts {
		all = append(all, p.Replies...)
	}
	return all
}
