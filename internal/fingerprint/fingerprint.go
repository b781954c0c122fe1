// Package fingerprint produces stable digests of an item's mutable fields.
// Equal mutable state always yields equal fingerprints; any observable change
// to score, edit state, or reply count changes the fingerprint. This is the
// load-bearing property for incremental sync.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/jonesrussell/threadcrawl/internal/domain"
)

// Post fingerprints a root item. The reply count is part of the subset
// because a new reply is an observable change worth re-crawling.
func Post(p *domain.Post) string {
	return digest(map[string]any{
		"id":          p.ID,
		"score":       p.Score,
		"edited":      p.Edited,
		"reply_count": p.ReplyCount,
	})
}

// Reply fingerprints a nested item. Reply counts are not provider-reported
// per reply, so the subset is score and edit state only.
func Reply(r *domain.Reply) string {
	return digest(map[string]any{
		"id":     r.ID,
		"score":  r.Score,
		"edited": r.Edited,
	})
}

// digest serializes the field subset with sorted keys and hashes it.
// encoding/json marshals map keys in sorted order, which makes the
// serialization deterministic. MD5 length is sufficient here; collision
// resistance is not a security requirement.
func digest(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		// Maps of strings and ints cannot fail to marshal.
		panic(err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
