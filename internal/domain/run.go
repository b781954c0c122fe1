package domain

import "time"

// StopReason explains why a run stopped before completing all passes.
type StopReason string

// Stop reasons reported in run stats.
const (
	StopNone       StopReason = "none"
	StopDailyCap   StopReason = "daily_cap"
	StopDeadline   StopReason = "deadline"
	StopFatalError StopReason = "fatal_error"
)

// RunStats summarizes one crawl run for the scheduler/operator.
type RunStats struct {
	ItemsDiscovered       int        `json:"items_discovered"`
	ItemsSkippedUnchanged int        `json:"items_skipped_unchanged"`
	RequestsMade          int        `json:"requests_made"`
	ThrottleEvents        int        `json:"throttle_events"`
	StoppedEarly          bool       `json:"stopped_early"`
	StopReason            StopReason `json:"stop_reason"`
}

// RunResult is the structured output of one crawl run: the deduplicated
// posts with embedded reply trees plus run metadata.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Scopes     []string  `json:"scopes"`
	Keywords   []string  `json:"keywords"`
	Posts      []*Post   `json:"posts"`
	Stats      RunStats  `json:"stats"`
}

// TotalReplies counts all replies across all posts, nested included.
func (r *RunResult) TotalReplies() int {
	total := 0
	for _, p := range r.Posts {
		total += CountReplies(p.Replies)
	}
	return total
}
