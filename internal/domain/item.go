// Package domain defines the core types shared across the crawler.
package domain

// DeletedAuthor is the sentinel author name for items whose author is absent.
const DeletedAuthor = "[deleted]"

// Listing types supported by browse-style discovery.
const (
	ListingHot    = "hot"
	ListingNew    = "new"
	ListingRising = "rising"
	ListingTop    = "top"
)

// Discovery pass names.
const (
	PassBrowse = "browse"
	PassSearch = "search"
)

// Post is a root discussion item owning a tree of nested replies.
type Post struct {
	ID        string `json:"id"`
	Scope     string `json:"scope"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	Score     int    `json:"score"`
	CreatedAt int64  `json:"created_at"`
	// Edited is the Unix timestamp of the last edit, 0 when never edited.
	Edited int64 `json:"edited,omitempty"`
	// ReplyCount is the provider-reported total; it may diverge from the
	// locally traversed count because of depth and fanout limits.
	ReplyCount int    `json:"reply_count"`
	Permalink  string `json:"permalink,omitempty"`
	// MatchedKeyword records the search term that discovered this post
	// (search pass only).
	MatchedKeyword string   `json:"matched_keyword,omitempty"`
	Replies        []*Reply `json:"replies"`
}

// Reply is a nested item at some depth below a post. Children are in
// provider-returned order.
type Reply struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	ParentID  string `json:"parent_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	Score     int    `json:"score"`
	CreatedAt int64  `json:"created_at"`
	Edited    int64  `json:"edited,omitempty"`
	// IsAuthorReply is true when the reply's author is the post's author.
	IsAuthorReply bool `json:"is_author_reply"`
	// Depth is 0 for direct replies to the post.
	Depth    int      `json:"depth"`
	Children []*Reply `json:"children"`
}

// CountReplies counts replies including all nested children.
func CountReplies(replies []*Reply) int {
	count := len(replies)
	for _, r := range replies {
		count += CountReplies(r.Children)
	}
	return count
}

// SearchPartition derives the record partition name for the search pass so
// browse and search discoveries keep independent incremental-sync ledgers.
func SearchPartition(scope string) string {
	return scope + ":search"
}
