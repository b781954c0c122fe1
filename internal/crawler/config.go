package crawler

import (
	"errors"
	"fmt"
)

// Default crawl limits, matching conservative provider etiquette.
const (
	DefaultPostsPerListing       = 25
	DefaultCommentsPerPost       = 20
	DefaultMaxDepth              = 4
	DefaultMaxFanout             = 10
	DefaultMinReplyScore         = -5
	DefaultReplyScoreSlack       = 3
	DefaultMinPostScore          = 10
	DefaultSearchLimit           = 10
	DefaultSearchCommentsPerPost = 10
	DefaultSearchMaxDepth        = 1
	DefaultDaysBack              = 3
)

// DefaultListings are the browse-style listing types scanned per scope.
var DefaultListings = []string{"hot", "new", "rising", "top"}

// Config holds crawl behavior settings. Browse and search traversals are two
// parameterizations of the same algorithm; nothing here is mutated mid-run.
type Config struct {
	// Scopes are the communities to crawl (e.g. subreddit names).
	Scopes []string `mapstructure:"scopes" yaml:"scopes"`
	// Keywords drive relevance matching and the search discovery pass.
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	// Listings are the browse listing types to scan.
	Listings []string `mapstructure:"listings" yaml:"listings"`
	// DaysBack bounds how old a browse-discovered post may be.
	DaysBack int `mapstructure:"days_back" yaml:"days_back"`
	// Incremental skips items whose fingerprints are unchanged since the
	// last run. Disable to re-collect everything.
	Incremental bool `mapstructure:"incremental" yaml:"incremental"`

	// MinPostScore is the minimum score for browse-discovered posts.
	MinPostScore    int `mapstructure:"min_post_score"    yaml:"min_post_score"`
	PostsPerListing int `mapstructure:"posts_per_listing" yaml:"posts_per_listing"`
	CommentsPerPost int `mapstructure:"comments_per_post" yaml:"comments_per_post"`

	// MaxDepth bounds reply-tree traversal (0 = top-level replies only).
	MaxDepth int `mapstructure:"max_depth"  yaml:"max_depth"`
	// MaxFanout bounds replies visited per node at each level.
	MaxFanout int `mapstructure:"max_fanout" yaml:"max_fanout"`
	// MinReplyScore is the score threshold for depth-0 replies. Deeper
	// replies are kept more leniently (threshold minus ReplyScoreSlack).
	MinReplyScore   int `mapstructure:"min_reply_score"   yaml:"min_reply_score"`
	ReplyScoreSlack int `mapstructure:"reply_score_slack" yaml:"reply_score_slack"`
	// PreserveContext keeps all replies within an already-entered branch
	// regardless of keyword match.
	PreserveContext bool `mapstructure:"preserve_context" yaml:"preserve_context"`
	// AlwaysIncludeAuthor keeps the post author's replies unconditionally.
	AlwaysIncludeAuthor bool `mapstructure:"always_include_author" yaml:"always_include_author"`

	// Search pass limits: fewer posts and a shallower tree to save budget.
	SearchLimit           int `mapstructure:"search_limit"             yaml:"search_limit"`
	SearchCommentsPerPost int `mapstructure:"search_comments_per_post" yaml:"search_comments_per_post"`
	SearchMaxDepth        int `mapstructure:"search_max_depth"         yaml:"search_max_depth"`
}

// NewConfig returns a config populated with defaults.
func NewConfig() Config {
	return Config{
		Listings:              append([]string(nil), DefaultListings...),
		DaysBack:              DefaultDaysBack,
		Incremental:           true,
		MinPostScore:          DefaultMinPostScore,
		PostsPerListing:       DefaultPostsPerListing,
		CommentsPerPost:       DefaultCommentsPerPost,
		MaxDepth:              DefaultMaxDepth,
		MaxFanout:             DefaultMaxFanout,
		MinReplyScore:         DefaultMinReplyScore,
		ReplyScoreSlack:       DefaultReplyScoreSlack,
		PreserveContext:       true,
		AlwaysIncludeAuthor:   true,
		SearchLimit:           DefaultSearchLimit,
		SearchCommentsPerPost: DefaultSearchCommentsPerPost,
		SearchMaxDepth:        DefaultSearchMaxDepth,
	}
}

// Validate checks the settings a run cannot proceed without. Called before
// any provider request is attempted.
func (c *Config) Validate() error {
	if len(c.Scopes) == 0 {
		return errors.New("at least one crawl scope is required")
	}
	if len(c.Listings) == 0 {
		return errors.New("at least one listing type is required")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", c.MaxDepth)
	}
	if c.MaxFanout <= 0 {
		return fmt.Errorf("max_fanout must be positive, got %d", c.MaxFanout)
	}
	if c.ReplyScoreSlack < 0 {
		return fmt.Errorf("reply_score_slack must be non-negative, got %d", c.ReplyScoreSlack)
	}
	if c.PostsPerListing <= 0 || c.CommentsPerPost <= 0 {
		return errors.New("listing and comment limits must be positive")
	}
	return nil
}

// treeParams parameterizes one tree traversal.
type treeParams struct {
	maxDepth  int
	maxFanout int
	// topLevel bounds top-level replies fetched per post.
	topLevel int
}

// browseTreeParams returns the traversal limits for browse discovery.
func (c *Config) browseTreeParams() treeParams {
	return treeParams{
		maxDepth:  c.MaxDepth,
		maxFanout: c.MaxFanout,
		topLevel:  c.CommentsPerPost,
	}
}

// searchTreeParams returns the shallower limits used for search results.
func (c *Config) searchTreeParams() treeParams {
	depth := c.SearchMaxDepth
	if depth > c.MaxDepth {
		depth = c.MaxDepth
	}
	return treeParams{
		maxDepth:  depth,
		maxFanout: c.MaxFanout,
		topLevel:  c.SearchCommentsPerPost,
	}
}

// minScoreAtDepth returns the keep threshold for a reply at the given depth.
// Deeper replies use a more lenient threshold to preserve conversational
// context around a relevant reply.
func (c *Config) minScoreAtDepth(depth int) int {
	if depth == 0 {
		return c.MinReplyScore
	}
	return c.MinReplyScore - c.ReplyScoreSlack
}
