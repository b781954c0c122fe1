package domain

import "time"

// RecordEntry is the persisted last-known state of a single item within a
// crawl record partition. An entry with fingerprint F means "as of LastSeen,
// this item's mutable state hashed to F".
type RecordEntry struct {
	Fingerprint string    `json:"hash"      db:"fingerprint"`
	Depth       int       `json:"depth"     db:"depth"`
	LastSeen    time.Time `json:"last_seen" db:"last_seen"`
}

// DailyWindowLayout is the calendar-date format of RateLimitState.WindowStart.
const DailyWindowLayout = "2006-01-02"

// RateLimitState is the persisted counter state of the rate governor. It must
// survive process restarts so the daily budget is respected across runs.
type RateLimitState struct {
	// DailyRequests is the number of requests admitted in the current window.
	DailyRequests int `json:"daily_requests" db:"daily_requests"`
	// WindowStart is the UTC calendar date (YYYY-MM-DD) the window began.
	// When the current date exceeds it the counter resets exactly once.
	WindowStart string `json:"window_start" db:"window_start"`
	// ThrottleHits counts provider throttle signals. It only increments
	// within a run; it drives backoff escalation.
	ThrottleHits int `json:"throttle_hits" db:"throttle_hits"`
}

// WindowDate parses WindowStart, returning the zero time when unset or
// malformed so a stale window always reads as "in the past".
func (s RateLimitState) WindowDate() time.Time {
	t, err := time.Parse(DailyWindowLayout, s.WindowStart)
	if err != nil {
		return time.Time{}
	}
	return t
}
