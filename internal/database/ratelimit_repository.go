package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/ratelimit"
)

// RateLimitRepository persists the rate governor's counters in PostgreSQL as
// a single row. It implements ratelimit.StateStore.
type RateLimitRepository struct {
	db *sqlx.DB
}

// NewRateLimitRepository creates a new rate limit state repository.
func NewRateLimitRepository(db *sqlx.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

var _ ratelimit.StateStore = (*RateLimitRepository)(nil)

// Load returns the persisted counters, zero-valued when never saved.
func (r *RateLimitRepository) Load(ctx context.Context) (domain.RateLimitState, error) {
	query := `SELECT daily_requests, window_start, throttle_hits FROM rate_limit_state WHERE id = 1`

	var state domain.RateLimitState
	err := r.db.GetContext(ctx, &state, query)
	switch {
	case err == sql.ErrNoRows:
		return domain.RateLimitState{}, nil
	case err != nil:
		return domain.RateLimitState{}, fmt.Errorf("failed to load rate limit state: %w", err)
	}
	return state, nil
}

// Save upserts the counters into the single state row.
func (r *RateLimitRepository) Save(ctx context.Context, state domain.RateLimitState) error {
	query := `
		INSERT INTO rate_limit_state (id, daily_requests, window_start, throttle_hits, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET daily_requests = EXCLUDED.daily_requests,
			window_start = EXCLUDED.window_start,
			throttle_hits = EXCLUDED.throttle_hits,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		state.DailyRequests, state.WindowStart, state.ThrottleHits)
	if err != nil {
		return fmt.Errorf("failed to save rate limit state: %w", err)
	}
	return nil
}
