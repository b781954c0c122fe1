// Package source defines the discussion-platform interface the crawler
// consumes, plus error-kind classification for provider failures.
package source

import (
	"context"
	"time"

	"github.com/jonesrussell/threadcrawl/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks github.com/jonesrussell/threadcrawl/internal/source Source

// Source supplies candidate root items and their nested reply structures.
// Implementations classify provider failures with the error kinds in this
// package so callers drive rate-governor transitions from values, not from
// provider-specific exceptions.
type Source interface {
	// ListCandidates returns up to limit root items from a browse-style
	// listing (hot, new, rising, top), newest-relevant first in the
	// provider's own order. Items created before since may be included;
	// age filtering is the caller's job.
	ListCandidates(ctx context.Context, scope, listing string, since time.Time, limit int) ([]*domain.Post, error)

	// SearchCandidates returns up to limit root items matching a keyword.
	// Results are pre-filtered by the provider's search.
	SearchCandidates(ctx context.Context, scope, keyword string, limit int) ([]*domain.Post, error)

	// FetchReplies returns the post's top-level replies with nested
	// children resolved, in provider order, up to limit top-level entries.
	// Depth and fanout bounding beyond that is the crawler's job.
	FetchReplies(ctx context.Context, post *domain.Post, limit int) ([]*domain.Reply, error)
}
