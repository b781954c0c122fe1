package crawler

import (
	"context"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/fingerprint"
	"github.com/jonesrussell/threadcrawl/internal/record"
	"github.com/jonesrussell/threadcrawl/internal/source"
)

// outcome is the per-node result of tree traversal.
type outcome int

const (
	// outcomeKept means the node passed all gates and is in the output.
	outcomeKept outcome = iota
	// outcomeSkipped means the node failed a depth/score/relevance gate;
	// its subtree is pruned.
	outcomeSkipped
	// outcomeUnchanged means the node's fingerprint matches the record;
	// nothing below it is visited this run.
	outcomeUnchanged
)

// crawlPost fetches and walks one post's reply tree. The returned post is
// never nil once the post itself is accepted: a failed reply fetch produces
// a post with an empty tree rather than discarding the root. A non-nil error
// is always one of the pass-control sentinels (or a context error) and the
// partial result accumulated so far remains valid.
func (c *Crawler) crawlPost(
	ctx context.Context,
	st *runState,
	part *record.Partition,
	post *domain.Post,
	params treeParams,
) (*domain.Post, error) {
	kept := *post
	kept.Replies = nil

	if err := c.admit(ctx, st); err != nil {
		return &kept, err
	}

	replies, err := c.source.FetchReplies(ctx, post, params.topLevel)
	if err != nil {
		if source.IsThrottled(err) {
			st.stats.ThrottleEvents++
			c.governor.OnThrottle(ctx)
			return &kept, errPassThrottled
		}
		// Access and transient failures skip this post's tree only;
		// the post itself and sibling posts survive.
		c.log.Warn("Failed to fetch replies, keeping post without tree",
			"post_id", post.ID, "error", err)
		return &kept, nil
	}

	if len(replies) > params.topLevel {
		replies = replies[:params.topLevel]
	}

	for _, reply := range replies {
		node, _, nodeErr := c.crawlReplyTree(ctx, st, part, reply, params, 0, true)
		if node != nil {
			kept.Replies = append(kept.Replies, node)
		}
		if nodeErr != nil {
			return &kept, nodeErr
		}
	}

	return &kept, nil
}

// crawlReplyTree recursively walks a reply and its children depth-first in
// provider order, applying in sequence: the depth bound, the depth-adjusted
// score threshold, the relevance filter, and the fingerprint check against
// the crawl record. A skip at any gate prunes the whole subtree. Children
// are bounded by the fanout limit and each recursion is gated on the rate
// governor, since resolving a node's children may touch the provider.
//
// checkRelevance is true only when entering a branch; once inside a kept
// branch with context preservation on, replies are no longer keyword-gated
// (score and depth bounds still apply).
func (c *Crawler) crawlReplyTree(
	ctx context.Context,
	st *runState,
	part *record.Partition,
	reply *domain.Reply,
	params treeParams,
	depth int,
	checkRelevance bool,
) (*domain.Reply, outcome, error) {
	if depth > params.maxDepth {
		return nil, outcomeSkipped, nil
	}

	if reply.Score < c.cfg.minScoreAtDepth(depth) {
		return nil, outcomeSkipped, nil
	}

	isAuthorReply := c.cfg.AlwaysIncludeAuthor && reply.IsAuthorReply
	if checkRelevance &&
		!c.filter.KeepReply(reply.Body, depth, isAuthorReply, c.cfg.PreserveContext) {
		return nil, outcomeSkipped, nil
	}

	fp := fingerprint.Reply(reply)
	if c.cfg.Incremental && part.SeenReply(reply.ID, fp) {
		st.stats.ItemsSkippedUnchanged++
		return nil, outcomeUnchanged, nil
	}
	part.PutReply(reply.ID, fp, depth, c.now())

	kept := *reply
	kept.Depth = depth
	kept.Children = nil

	if depth < params.maxDepth {
		children := reply.Children
		if len(children) > params.maxFanout {
			children = children[:params.maxFanout]
		}
		for _, child := range children {
			if err := c.admit(ctx, st); err != nil {
				return &kept, outcomeKept, err
			}
			node, _, err := c.crawlReplyTree(
				ctx, st, part, child, params, depth+1, !c.cfg.PreserveContext)
			if node != nil {
				kept.Children = append(kept.Children, node)
			}
			if err != nil {
				// Throttle or cap: abort remaining siblings, keep
				// what has been accumulated.
				return &kept, outcomeKept, err
			}
		}
	}

	return &kept, outcomeKept, nil
}
