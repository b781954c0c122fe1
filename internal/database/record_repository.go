package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/threadcrawl/internal/domain"
	"github.com/jonesrussell/threadcrawl/internal/record"
)

// Item kinds within a crawl record partition. Root items and replies occupy
// separate id spaces in the provider, so they are distinguished by kind.
const (
	recordKindPost  = "post"
	recordKindReply = "reply"
)

// RecordRepository persists crawl record partitions in PostgreSQL. It
// implements record.Store.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new crawl record repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

var _ record.Store = (*RecordRepository)(nil)

type recordRow struct {
	Kind        string    `db:"kind"`
	ItemID      string    `db:"item_id"`
	Fingerprint string    `db:"fingerprint"`
	Depth       int       `db:"depth"`
	LastSeen    time.Time `db:"last_seen"`
}

// Load returns the partition for a scope, empty when nothing was persisted.
func (r *RecordRepository) Load(ctx context.Context, scope string) (*record.Partition, error) {
	part := record.NewPartition(scope)

	var lastCrawl sql.NullTime
	err := r.db.GetContext(ctx, &lastCrawl,
		`SELECT last_crawl FROM crawl_scopes WHERE scope = $1`, scope)
	switch {
	case err == sql.ErrNoRows:
		return part, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load crawl scope %s: %w", scope, err)
	}
	if lastCrawl.Valid {
		part.LastCrawl = lastCrawl.Time
	}

	var rows []recordRow
	query := `
		SELECT kind, item_id, fingerprint, depth, last_seen
		FROM crawl_records
		WHERE scope = $1
	`
	if err := r.db.SelectContext(ctx, &rows, query, scope); err != nil {
		return nil, fmt.Errorf("failed to load crawl records for %s: %w", scope, err)
	}

	for _, row := range rows {
		entry := domain.RecordEntry{
			Fingerprint: row.Fingerprint,
			Depth:       row.Depth,
			LastSeen:    row.LastSeen,
		}
		switch row.Kind {
		case recordKindPost:
			part.Posts[row.ItemID] = entry
		case recordKindReply:
			part.Replies[row.ItemID] = entry
		}
	}

	return part, nil
}

// Save upserts the partition's entries. Entries are never deleted: absence
// from the current run does not mean the item is gone from the provider.
func (r *RecordRepository) Save(ctx context.Context, partition *record.Partition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin crawl record save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	scopeQuery := `
		INSERT INTO crawl_scopes (scope, last_crawl)
		VALUES ($1, $2)
		ON CONFLICT (scope) DO UPDATE SET last_crawl = EXCLUDED.last_crawl
	`
	var lastCrawl any
	if !partition.LastCrawl.IsZero() {
		lastCrawl = partition.LastCrawl
	}
	if _, err = tx.ExecContext(ctx, scopeQuery, partition.Scope, lastCrawl); err != nil {
		return fmt.Errorf("failed to upsert crawl scope %s: %w", partition.Scope, err)
	}

	if err = upsertEntries(ctx, tx, partition.Scope, recordKindPost, partition.Posts); err != nil {
		return err
	}
	if err = upsertEntries(ctx, tx, partition.Scope, recordKindReply, partition.Replies); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crawl record save: %w", err)
	}
	return nil
}

// upsertEntries writes one kind's entries. The partition does not track dirty
// entries, so every entry is written; the upsert keeps this idempotent.
func upsertEntries(
	ctx context.Context,
	tx *sqlx.Tx,
	scope, kind string,
	entries map[string]domain.RecordEntry,
) error {
	query := `
		INSERT INTO crawl_records (scope, kind, item_id, fingerprint, depth, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (scope, kind, item_id) DO UPDATE
		SET fingerprint = EXCLUDED.fingerprint,
			depth = EXCLUDED.depth,
			last_seen = EXCLUDED.last_seen
	`
	for itemID, entry := range entries {
		_, err := tx.ExecContext(ctx, query,
			scope, kind, itemID, entry.Fingerprint, entry.Depth, entry.LastSeen)
		if err != nil {
			return fmt.Errorf("failed to upsert crawl record %s/%s: %w", scope, itemID, err)
		}
	}
	return nil
}

// ScopeSummary is the per-partition view used by the record inspection command.
type ScopeSummary struct {
	Scope     string       `db:"scope"`
	Posts     int          `db:"posts"`
	Replies   int          `db:"replies"`
	LastCrawl sql.NullTime `db:"last_crawl"`
}

// Summaries returns one row per persisted partition with item counts.
func (r *RecordRepository) Summaries(ctx context.Context) ([]ScopeSummary, error) {
	query := `
		SELECT s.scope,
			COUNT(*) FILTER (WHERE c.kind = 'post') AS posts,
			COUNT(*) FILTER (WHERE c.kind = 'reply') AS replies,
			s.last_crawl
		FROM crawl_scopes s
		LEFT JOIN crawl_records c ON c.scope = s.scope
		GROUP BY s.scope, s.last_crawl
		ORDER BY s.scope
	`

	var summaries []ScopeSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to summarize crawl records: %w", err)
	}
	if summaries == nil {
		summaries = []ScopeSummary{}
	}
	return summaries, nil
}
