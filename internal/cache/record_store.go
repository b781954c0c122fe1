package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/threadcrawl/internal/record"
)

// RecordStore keeps crawl record partitions in Redis as one JSON blob per
// partition. It implements record.Store.
type RecordStore struct {
	client *redis.Client
}

// NewRecordStore creates a Redis-backed crawl record store.
func NewRecordStore(client *redis.Client) *RecordStore {
	return &RecordStore{client: client}
}

var _ record.Store = (*RecordStore)(nil)

// Load returns the partition for a scope, empty when the key is absent.
func (s *RecordStore) Load(ctx context.Context, scope string) (*record.Partition, error) {
	data, err := s.client.Get(ctx, recordKeyPrefix+scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return record.NewPartition(scope), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl record %s: %w", scope, err)
	}

	part := record.NewPartition(scope)
	if unmarshalErr := json.Unmarshal(data, part); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal crawl record %s: %w", scope, unmarshalErr)
	}
	return part, nil
}

// Save persists the whole partition. Partitions stay small enough (one entry
// per ever-seen item id) that blob replacement beats per-entry keys.
func (s *RecordStore) Save(ctx context.Context, partition *record.Partition) error {
	data, err := json.Marshal(partition)
	if err != nil {
		return fmt.Errorf("failed to marshal crawl record %s: %w", partition.Scope, err)
	}

	if setErr := s.client.Set(ctx, recordKeyPrefix+partition.Scope, data, 0).Err(); setErr != nil {
		return fmt.Errorf("failed to set crawl record %s: %w", partition.Scope, setErr)
	}
	return nil
}
