package crawler

import (
	"context"
	"fmt"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/fingerprint"
	"github.com/jonesrussell/threadcrawl/internal/source"
)

// searchPass discovers posts for one scope via targeted keyword search.
// Results are pre-filtered by the provider, so no age/score/keyword gate is
// applied to the roots; unlike browse listings there is no early stop on an
// unchanged item because each search is independent. Search results use a
// dedicated record partition and a shallower tree configuration.
func (c *Crawler) searchPass(
	ctx context.Context,
	st *runState,
	scope string,
) ([]*domain.Post, error) {
	log := c.log.WithScope(scope).With("pass", domain.PassSearch)

	part, err := c.records.Load(ctx, domain.SearchPartition(scope))
	if err != nil {
		return nil, fmt.Errorf("failed to load search record for %s: %w", scope, err)
	}

	var collected []*domain.Post

keywords:
	for _, keyword := range c.cfg.Keywords {
		if st.deadlineExceeded(c.now()) {
			st.stop(domain.StopDeadline)
			break
		}

		if admitErr := c.admit(ctx, st); admitErr != nil {
			c.notePassStop(st, admitErr)
			break
		}

		posts, searchErr := c.source.SearchCandidates(ctx, scope, keyword, c.cfg.SearchLimit)
		if searchErr != nil {
			switch {
			case source.IsThrottled(searchErr):
				st.stats.ThrottleEvents++
				c.governor.OnThrottle(ctx)
				log.Warn("Throttled searching keyword, stopping pass",
					"keyword", keyword)
				break keywords
			case source.IsNotFound(searchErr):
				log.Warn("Search unavailable, skipping keyword",
					"keyword", keyword, "error", searchErr)
				continue
			default:
				log.Warn("Transient error searching keyword, skipping",
					"keyword", keyword, "error", searchErr)
				continue
			}
		}

		for _, post := range posts {
			if st.deadlineExceeded(c.now()) {
				st.stop(domain.StopDeadline)
				break keywords
			}

			fp := fingerprint.Post(post)
			if c.cfg.Incremental && part.SeenPost(post.ID, fp) {
				st.stats.ItemsSkippedUnchanged++
				continue
			}

			kept, crawlErr := c.crawlPost(ctx, st, part, post, c.cfg.searchTreeParams())
			if kept != nil {
				kept.MatchedKeyword = keyword
				part.PutPost(post.ID, fp, c.now())
				collected = append(collected, kept)
				c.checkpoint(ctx, part)
			}
			if crawlErr != nil {
				c.notePassStop(st, crawlErr)
				break keywords
			}
		}
	}

	part.Touch(c.now())
	c.checkpoint(ctx, part)

	log.Info("Search pass complete", "posts", len(collected))
	return collected, nil
}
