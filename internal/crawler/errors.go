package crawler

import "errors"

// Internal control-flow sentinels for pass termination. These never escape
// Run; they translate into run stats.
var (
	// errDailyCapped stops the entire run: the daily budget is spent.
	errDailyCapped = errors.New("daily request budget exhausted")

	// errPassThrottled stops the current discovery pass after a provider
	// throttle signal; later passes proceed once the backoff window ends.
	errPassThrottled = errors.New("discovery pass stopped by throttling")
)
