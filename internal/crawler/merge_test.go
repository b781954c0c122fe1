package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/threadcrawl/internal/domain"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("no passes", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Merge())
		assert.Empty(t, Merge(nil, nil))
	})

	t.Run("disjoint passes keep insertion order", func(t *testing.T) {
		t.Parallel()
		browse := []*domain.Post{{ID: "a"}, {ID: "b"}}
		search := []*domain.Post{{ID: "c"}}

		merged := Merge(browse, search)
		require.Len(t, merged, 3)
		assert.Equal(t, "a", merged[0].ID)
		assert.Equal(t, "b", merged[1].ID)
		assert.Equal(t, "c", merged[2].ID)
	})

	t.Run("duplicate id keeps first copy's fields", func(t *testing.T) {
		t.Parallel()
		browse := []*domain.Post{{ID: "a", Score: 10}}
		search := []*domain.Post{{ID: "a", Score: 99, MatchedKeyword: "widget"}}

		merged := Merge(browse, search)
		require.Len(t, merged, 1)
		assert.Equal(t, 10, merged[0].Score)
		assert.Empty(t, merged[0].MatchedKeyword)
	})

	t.Run("duplicate id unions top-level replies", func(t *testing.T) {
		t.Parallel()
		shared := &domain.Reply{ID: "r1", Score: 5}
		browse := []*domain.Post{{ID: "a", Replies: []*domain.Reply{
			shared,
			{ID: "r2"},
		}}}
		search := []*domain.Post{{ID: "a", Replies: []*domain.Reply{
			{ID: "r1", Score: 7},
			{ID: "r3", Children: []*domain.Reply{{ID: "r3a"}}},
		}}}

		merged := Merge(browse, search)
		require.Len(t, merged, 1)
		require.Len(t, merged[0].Replies, 3)
		assert.Equal(t, "r1", merged[0].Replies[0].ID)
		// The first-seen subtree wins for shared reply ids.
		assert.Equal(t, 5, merged[0].Replies[0].Score)
		assert.Equal(t, "r2", merged[0].Replies[1].ID)
		assert.Equal(t, "r3", merged[0].Replies[2].ID)
		require.Len(t, merged[0].Replies[2].Children, 1)
	})

	t.Run("same slice twice is idempotent", func(t *testing.T) {
		t.Parallel()
		posts := []*domain.Post{{ID: "a", Replies: []*domain.Reply{{ID: "r1"}}}}

		merged := Merge(posts, posts)
		require.Len(t, merged, 1)
		assert.Len(t, merged[0].Replies, 1)
	})
}
