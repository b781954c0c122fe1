package source

import "errors"

// Sentinel error kinds. Implementations wrap these so callers classify
// failures with errors.Is and decide governor transitions accordingly.
var (
	// ErrThrottled means the provider signaled rate limiting. The caller
	// fires the governor's backoff transition and stops the current
	// discovery pass.
	ErrThrottled = errors.New("provider throttled request")

	// ErrNotFound means the provider denied or lacks the resource. The
	// current listing type or keyword is abandoned; siblings continue.
	ErrNotFound = errors.New("resource not found or access denied")
)

// IsThrottled reports whether err carries the throttle kind.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsNotFound reports whether err carries the not-found/access kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
