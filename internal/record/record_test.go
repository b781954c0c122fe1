package record_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/threadcrawl/internal/record"
)

func TestPartition_SeenSemantics(t *testing.T) {
	t.Parallel()

	p := record.NewPartition("LawFirm")
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	// Absent id: never seen, regardless of fingerprint.
	if p.SeenPost("p1", "aaa") {
		t.Fatal("absent post must not be seen")
	}

	p.PutPost("p1", "aaa", now)
	if !p.SeenPost("p1", "aaa") {
		t.Fatal("same fingerprint must report seen")
	}
	// Changed fingerprint: the item mutated since last crawl.
	if p.SeenPost("p1", "bbb") {
		t.Fatal("different fingerprint must not report seen")
	}

	// Root items and replies occupy separate id spaces.
	if p.SeenReply("p1", "aaa") {
		t.Fatal("post id must not leak into the reply space")
	}

	p.PutReply("r1", "ccc", 2, now)
	if !p.SeenReply("r1", "ccc") {
		t.Fatal("recorded reply must report seen")
	}
	if p.Replies["r1"].Depth != 2 {
		t.Fatalf("expected depth 2, got %d", p.Replies["r1"].Depth)
	}
}

func TestPartition_LoadedWithNilMaps(t *testing.T) {
	t.Parallel()

	// A partition decoded from storage may carry nil maps.
	p := &record.Partition{Scope: "LawFirm"}
	p.PutPost("p1", "aaa", time.Now())
	if !p.SeenPost("p1", "aaa") {
		t.Fatal("nil maps must be initialized on first use")
	}
}
