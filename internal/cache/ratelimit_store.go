package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/ratelimit"
)

// RateLimitStore keeps the rate governor's counters in Redis as a single
// JSON value. It implements ratelimit.StateStore.
type RateLimitStore struct {
	client *redis.Client
}

// NewRateLimitStore creates a Redis-backed rate limit state store.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

var _ ratelimit.StateStore = (*RateLimitStore)(nil)

// Load returns the persisted counters, zero-valued when the key is absent.
func (s *RateLimitStore) Load(ctx context.Context) (domain.RateLimitState, error) {
	data, err := s.client.Get(ctx, rateLimitKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RateLimitState{}, nil
	}
	if err != nil {
		return domain.RateLimitState{}, fmt.Errorf("failed to get rate limit state: %w", err)
	}

	var state domain.RateLimitState
	if unmarshalErr := json.Unmarshal(data, &state); unmarshalErr != nil {
		return domain.RateLimitState{}, fmt.Errorf(
			"failed to unmarshal rate limit state: %w", unmarshalErr,
		)
	}
	return state, nil
}

// Save persists the counters.
func (s *RateLimitStore) Save(ctx context.Context, state domain.RateLimitState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit state: %w", err)
	}

	if setErr := s.client.Set(ctx, rateLimitKey, data, 0).Err(); setErr != nil {
		return fmt.Errorf("failed to set rate limit state: %w", setErr)
	}
	return nil
}
