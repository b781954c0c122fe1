// Package record tracks previously-seen items and their fingerprints, making
// repeat crawls incremental. Partitions never evict: absence means never seen.
package record

import (
	"context"
	"time"

	"github.com/jonesrussell/threadcrawl/internal/domain"
)

// Store persists partitions across runs. Read-after-write consistency within
// one process is sufficient; there is no concurrent writer.
type Store interface {
	// Load returns the partition for a scope, empty when never persisted.
	Load(ctx context.Context, scope string) (*Partition, error)
	// Save persists the partition. Called at checkpoints: after every root
	// item and at the end of each discovery pass.
	Save(ctx context.Context, partition *Partition) error
}

// Partition is one logical crawl scope's ledger (a source plus discovery
// method, e.g. "LawFirm" vs "LawFirm:search"). Root items and replies occupy
// separate id spaces and therefore separate maps.
type Partition struct {
	Scope     string                        `json:"scope"`
	Posts     map[string]domain.RecordEntry `json:"posts"`
	Replies   map[string]domain.RecordEntry `json:"replies"`
	LastCrawl time.Time                     `json:"last_crawl"`
}

// NewPartition creates an empty partition for a scope.
func NewPartition(scope string) *Partition {
	return &Partition{
		Scope:   scope,
		Posts:   make(map[string]domain.RecordEntry),
		Replies: make(map[string]domain.RecordEntry),
	}
}

// init backfills nil maps on partitions loaded from storage.
func (p *Partition) init() {
	if p.Posts == nil {
		p.Posts = make(map[string]domain.RecordEntry)
	}
	if p.Replies == nil {
		p.Replies = make(map[string]domain.RecordEntry)
	}
}

// SeenPost reports whether a post was recorded with the same fingerprint.
func (p *Partition) SeenPost(id, fingerprint string) bool {
	p.init()
	entry, ok := p.Posts[id]
	return ok && entry.Fingerprint == fingerprint
}

// PutPost records a post's current fingerprint.
func (p *Partition) PutPost(id, fingerprint string, now time.Time) {
	p.init()
	p.Posts[id] = domain.RecordEntry{Fingerprint: fingerprint, LastSeen: now}
}

// SeenReply reports whether a reply was recorded with the same fingerprint.
func (p *Partition) SeenReply(id, fingerprint string) bool {
	p.init()
	entry, ok := p.Replies[id]
	return ok && entry.Fingerprint == fingerprint
}

// PutReply records a reply's current fingerprint and depth.
func (p *Partition) PutReply(id, fingerprint string, depth int, now time.Time) {
	p.init()
	p.Replies[id] = domain.RecordEntry{
		Fingerprint: fingerprint,
		Depth:       depth,
		LastSeen:    now,
	}
}

// Touch stamps the partition's last successful crawl time.
func (p *Partition) Touch(now time.Time) {
	p.LastCrawl = now
}

// Size returns the number of recorded posts and replies.
func (p *Partition) Size() (posts, replies int) {
	return len(p.Posts), len(p.Replies)
}
