// Package reddit implements source.Source against Reddit's public JSON
// endpoints. No OAuth is required for read-only listing access; the client
// identifies itself with a configurable User-Agent as Reddit's API rules ask.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/logger"
	"github.com/jonesrussell/threadcrawl/internal/source"
)

const (
	// DefaultBaseURL is Reddit's public JSON host.
	DefaultBaseURL = "https://www.reddit.com"
	// DefaultUserAgent identifies the crawler per Reddit API guidelines.
	DefaultUserAgent = "threadcrawl/1.0"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// topTimeFilter scopes "top" listings and searches to the past week.
	topTimeFilter = "week"

	kindComment = "t1"
	kindPost    = "t3"

	maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB
)

// Config holds the client settings.
type Config struct {
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"`
}

// NewConfig returns a config populated with defaults.
func NewConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client is a read-only Reddit API client implementing source.Source.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        logger.Interface
}

// Ensure Client implements the Source interface.
var _ source.Source = (*Client)(nil)

// NewClient creates a Reddit source client.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		log:        log.WithComponent("reddit"),
	}
}

// ListCandidates fetches a browse-style listing for a subreddit.
func (c *Client) ListCandidates(
	ctx context.Context,
	scope, listingType string,
	_ time.Time,
	limit int,
) ([]*domain.Post, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}, "raw_json": {"1"}}
	if listingType == domain.ListingTop {
		params.Set("t", topTimeFilter)
	}
	endpoint := fmt.Sprintf("%s/r/%s/%s.json?%s",
		c.baseURL, url.PathEscape(scope), url.PathEscape(listingType), params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", scope, listingType, err)
	}
	return c.decodePostListing(body, scope)
}

// SearchCandidates queries the subreddit-restricted search endpoint.
func (c *Client) SearchCandidates(
	ctx context.Context,
	scope, keyword string,
	limit int,
) ([]*domain.Post, error) {
	params := url.Values{
		"q":           {keyword},
		"restrict_sr": {"1"},
		"sort":        {"relevance"},
		"t":           {topTimeFilter},
		"limit":       {strconv.Itoa(limit)},
		"raw_json":    {"1"},
	}
	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s",
		c.baseURL, url.PathEscape(scope), params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("search %s %q: %w", scope, keyword, err)
	}
	return c.decodePostListing(body, scope)
}

// FetchReplies fetches the post's comment tree. Reddit returns the full
// nested structure in one response; the caller bounds depth and fanout.
func (c *Client) FetchReplies(
	ctx context.Context,
	post *domain.Post,
	limit int,
) ([]*domain.Reply, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}, "raw_json": {"1"}}
	endpoint := fmt.Sprintf("%s/r/%s/comments/%s.json?%s",
		c.baseURL, url.PathEscape(post.Scope), url.PathEscape(post.ID), params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("comments for %s: %w", post.ID, err)
	}

	// The comments endpoint returns two listings: the post itself, then
	// the top-level comment forest.
	var things []thing
	if unmarshalErr := json.Unmarshal(body, &things); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to decode comment response: %w", unmarshalErr)
	}
	if len(things) < 2 {
		return nil, nil
	}

	var forest listing
	if unmarshalErr := json.Unmarshal(things[1].Data, &forest); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to decode comment forest: %w", unmarshalErr)
	}

	return c.convertComments(&forest, post.ID, 0), nil
}

// get issues a GET request and classifies failure status codes into the
// source package's error kinds.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to read
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, source.ErrThrottled)
	case resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, source.ErrNotFound)
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// decodePostListing converts a listing response into posts.
func (c *Client) decodePostListing(body []byte, scope string) ([]*domain.Post, error) {
	var t thing
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	var l listing
	if err := json.Unmarshal(t.Data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode listing data: %w", err)
	}

	posts := make([]*domain.Post, 0, len(l.Children))
	for _, child := range l.Children {
		if child.Kind != kindPost {
			continue
		}
		var data postData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			c.log.Warn("Skipping undecodable post", "error", err)
			continue
		}
		posts = append(posts, postFromData(&data, scope))
	}
	return posts, nil
}

// convertComments converts a comment listing into reply nodes, recursing
// into nested replies. Depth 0 is a direct reply to the post.
func (c *Client) convertComments(l *listing, postID string, depth int) []*domain.Reply {
	if l == nil {
		return nil
	}

	replies := make([]*domain.Reply, 0, len(l.Children))
	for _, child := range l.Children {
		// "more" stubs and other kinds are not comments.
		if child.Kind != kindComment {
			continue
		}
		var data commentData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			c.log.Warn("Skipping undecodable comment", "error", err)
			continue
		}

		reply := &domain.Reply{
			ID:            data.ID,
			PostID:        postID,
			ParentID:      stripKindPrefix(data.ParentID),
			Author:        authorOrDeleted(data.Author),
			Body:          data.Body,
			Score:         data.Score,
			CreatedAt:     int64(data.CreatedUTC),
			Edited:        int64(data.Edited),
			IsAuthorReply: data.IsSubmitter,
			Depth:         depth,
		}
		reply.Children = c.convertComments(data.Replies.listing, postID, depth+1)
		replies = append(replies, reply)
	}
	return replies
}

// postFromData converts wire post data to the domain type.
func postFromData(data *postData, scope string) *domain.Post {
	if data.Subreddit != "" {
		scope = data.Subreddit
	}
	return &domain.Post{
		ID:         data.ID,
		Scope:      scope,
		Title:      data.Title,
		Body:       data.Selftext,
		Author:     authorOrDeleted(data.Author),
		Score:      data.Score,
		CreatedAt:  int64(data.CreatedUTC),
		Edited:     int64(data.Edited),
		ReplyCount: data.NumComments,
		Permalink:  data.Permalink,
	}
}

// stripKindPrefix removes Reddit's "t1_"/"t3_" id prefixes.
func stripKindPrefix(id string) string {
	if len(id) > 3 && id[2] == '_' {
		return id[3:]
	}
	return id
}

// authorOrDeleted substitutes the deleted-author sentinel.
func authorOrDeleted(author string) string {
	if author == "" {
		return domain.DeletedAuthor
	}
	return author
}
