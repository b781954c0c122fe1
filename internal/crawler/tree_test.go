package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/record"
	"github.com/jonesrussell/threadcrawl/internal/source/mocks"
)

func reply(id, author, body string, score int, children ...*domain.Reply) *domain.Reply {
	return &domain.Reply{
		ID:        id,
		PostID:    "p1",
		Author:    author,
		Body:      body,
		Score:     score,
		CreatedAt: time.Now().Add(-time.Hour).Unix(),
		Children:  children,
	}
}

func authorReply(id, author, body string, score int, children ...*domain.Reply) *domain.Reply {
	r := reply(id, author, body, score, children...)
	r.IsAuthorReply = true
	return r
}

func replyIDs(replies []*domain.Reply) []string {
	ids := make([]string, 0, len(replies))
	for _, r := range replies {
		ids = append(ids, r.ID)
	}
	return ids
}

func crawlOnePost(
	t *testing.T,
	cfg Config,
	post *domain.Post,
	tree []*domain.Reply,
) (*domain.Post, *runState) {
	t.Helper()

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().
		FetchReplies(gomock.Any(), post, gomock.Any()).
		Return(tree, nil)

	c := newTestCrawler(t, src, cfg, newMemRecords())
	st := newRunState(time.Time{})
	part := record.NewPartition("widgets")

	kept, err := c.crawlPost(context.Background(), st, part, post, cfg.browseTreeParams())
	require.NoError(t, err)
	require.NotNil(t, kept)
	return kept, st
}

func TestCrawlPostAppliesReplyGates(t *testing.T) {
	t.Parallel()

	post := recentPost("p1", "alice", "widget review", "my thoughts on the widget", 42)
	tree := []*domain.Reply{
		// Author reply with no keyword: kept through the author exception.
		authorReply("c1", "alice", "thanks everyone", 5),
		// Matching top-level reply with an off-topic child: the child is
		// kept because context preservation is on inside a kept branch.
		reply("c2", "bob", "love the widget", 8,
			reply("c2a", "carol", "same here, no complaints", 2)),
		// Non-matching top-level reply: pruned with its whole subtree.
		reply("c3", "bob", "completely unrelated topic", 12,
			reply("c3a", "dave", "widget widget widget", 30)),
	}

	kept, st := crawlOnePost(t, testConfig(), post, tree)

	assert.Equal(t, []string{"c1", "c2"}, replyIDs(kept.Replies))
	require.Len(t, kept.Replies[1].Children, 1)
	assert.Equal(t, "c2a", kept.Replies[1].Children[0].ID)
	assert.Equal(t, 1, kept.Replies[1].Children[0].Depth)

	// One reply fetch plus one admission per visited child (c2a only;
	// c3's subtree is pruned before any child is admitted).
	assert.Equal(t, 2, st.stats.RequestsMade)
}

func TestCrawlPostAuthorExceptionDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.AlwaysIncludeAuthor = false

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		authorReply("c1", "alice", "thanks everyone", 5),
		reply("c2", "bob", "love the widget", 8),
	}

	kept, _ := crawlOnePost(t, cfg, post, tree)
	assert.Equal(t, []string{"c2"}, replyIDs(kept.Replies))
}

func TestCrawlPostKeywordGateInsideBranch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.PreserveContext = false

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		reply("c1", "bob", "love the widget", 8,
			reply("c1a", "carol", "same here", 2),
			reply("c1b", "dave", "the widget is fine", 2)),
	}

	kept, _ := crawlOnePost(t, cfg, post, tree)
	require.Equal(t, []string{"c1"}, replyIDs(kept.Replies))
	// Without context preservation, descendants face the keyword gate too.
	assert.Equal(t, []string{"c1b"}, replyIDs(kept.Replies[0].Children))
}

func TestCrawlPostDepthBound(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDepth = 1

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		reply("r0", "bob", "love the widget", 8,
			reply("r1", "carol", "agreed on the widget", 4,
				reply("r2", "dave", "widget all the way down", 3))),
	}

	kept, st := crawlOnePost(t, cfg, post, tree)
	require.Equal(t, []string{"r0"}, replyIDs(kept.Replies))
	require.Equal(t, []string{"r1"}, replyIDs(kept.Replies[0].Children))
	assert.Empty(t, kept.Replies[0].Children[0].Children)

	// r1 sits at the depth limit, so r2 is never visited nor admitted.
	assert.Equal(t, 2, st.stats.RequestsMade)
}

func TestCrawlPostScoreThresholds(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MinReplyScore = 0
	cfg.ReplyScoreSlack = 3

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		// Below the top-level threshold: pruned.
		reply("neg", "bob", "hate the widget", -1),
		// Children get the slack-adjusted threshold: -3 passes, -4 does not.
		reply("pos", "carol", "love the widget", 5,
			reply("deep-ok", "dave", "still on topic", -3),
			reply("deep-low", "erin", "buried take", -4)),
	}

	kept, _ := crawlOnePost(t, cfg, post, tree)
	require.Equal(t, []string{"pos"}, replyIDs(kept.Replies))
	assert.Equal(t, []string{"deep-ok"}, replyIDs(kept.Replies[0].Children))
}

func TestCrawlPostFanoutBound(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxFanout = 2

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		reply("top", "bob", "love the widget", 8,
			reply("a", "carol", "widget a", 3),
			reply("b", "dave", "widget b", 3),
			reply("c", "erin", "widget c", 3)),
	}

	kept, _ := crawlOnePost(t, cfg, post, tree)
	require.Equal(t, []string{"top"}, replyIDs(kept.Replies))
	assert.Equal(t, []string{"a", "b"}, replyIDs(kept.Replies[0].Children))
}

func TestCrawlPostTopLevelLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CommentsPerPost = 2

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		reply("a", "bob", "widget a", 3),
		reply("b", "carol", "widget b", 3),
		reply("c", "dave", "widget c", 3),
	}

	kept, _ := crawlOnePost(t, cfg, post, tree)
	assert.Equal(t, []string{"a", "b"}, replyIDs(kept.Replies))
}

func TestCrawlPostSkipsUnchangedSubtree(t *testing.T) {
	t.Parallel()

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := func() []*domain.Reply {
		return []*domain.Reply{
			reply("c1", "bob", "love the widget", 8,
				reply("c1a", "carol", "same here", 2)),
		}
	}

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().
		FetchReplies(gomock.Any(), post, gomock.Any()).
		Return(tree(), nil).
		Times(2)

	cfg := testConfig()
	c := newTestCrawler(t, src, cfg, newMemRecords())
	part := record.NewPartition("widgets")

	st := newRunState(time.Time{})
	kept, err := c.crawlPost(context.Background(), st, part, post, cfg.browseTreeParams())
	require.NoError(t, err)
	require.Len(t, kept.Replies, 1)

	// Same fingerprints on the next visit: the whole subtree is skipped
	// and the child below the unchanged root is never reached.
	st = newRunState(time.Time{})
	kept, err = c.crawlPost(context.Background(), st, part, post, cfg.browseTreeParams())
	require.NoError(t, err)
	assert.Empty(t, kept.Replies)
	assert.Equal(t, 1, st.stats.ItemsSkippedUnchanged)
	assert.Equal(t, 1, st.stats.RequestsMade)
}

func TestCrawlPostDepthZeroKeepsTopLevelOnly(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDepth = 0

	post := recentPost("p1", "alice", "widget review", "", 42)
	tree := []*domain.Reply{
		reply("c1", "bob", "love the widget", 8,
			reply("c1a", "carol", "same here", 2)),
	}

	kept, st := crawlOnePost(t, cfg, post, tree)
	require.Equal(t, []string{"c1"}, replyIDs(kept.Replies))
	assert.Empty(t, kept.Replies[0].Children)
	// No child recursion means no admissions beyond the reply fetch.
	assert.Equal(t, 1, st.stats.RequestsMade)
}
