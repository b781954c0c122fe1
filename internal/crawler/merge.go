package crawler

import "github.com/jonesrussell/threadcrawl/internal/domain"

// Merge reconciles root items discovered by independent passes into one
// deduplicated list. Merge key is the root id: the first-seen copy of a
// post's own fields wins, and the passes' top-level reply trees are unioned
// by reply id, keeping either side's subtree for ids not already present.
// Final order is insertion order across passes.
func Merge(passes ...[]*domain.Post) []*domain.Post {
	merged := make([]*domain.Post, 0)
	byID := make(map[string]*domain.Post)

	for _, pass := range passes {
		for _, post := range pass {
			existing, ok := byID[post.ID]
			if !ok {
				byID[post.ID] = post
				merged = append(merged, post)
				continue
			}
			if existing == post {
				continue
			}
			mergeReplies(existing, post)
		}
	}
	return merged
}

// mergeReplies unions src's top-level reply subtrees into dst, discarding
// reply ids dst already carries.
func mergeReplies(dst, src *domain.Post) {
	seen := make(map[string]struct{}, len(dst.Replies))
	for _, r := range dst.Replies {
		seen[r.ID] = struct{}{}
	}
	for _, r := range src.Replies {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		dst.Replies = append(dst.Replies, r)
		seen[r.ID] = struct{}{}
	}
}
