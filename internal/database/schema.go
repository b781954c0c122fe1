package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS crawl_records (
    scope       TEXT NOT NULL,
    kind        TEXT NOT NULL,
    item_id     TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    depth       INTEGER NOT NULL DEFAULT 0,
    last_seen   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (scope, kind, item_id)
);

CREATE INDEX IF NOT EXISTS idx_crawl_records_scope ON crawl_records(scope);

CREATE TABLE IF NOT EXISTS crawl_scopes (
    scope      TEXT PRIMARY KEY,
    last_crawl TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS rate_limit_state (
    id             SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    daily_requests INTEGER NOT NULL DEFAULT 0,
    window_start   TEXT NOT NULL DEFAULT '',
    throttle_hits  INTEGER NOT NULL DEFAULT 0,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the crawler tables when they do not exist. Statements
// are idempotent so this runs safely on every startup.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}
	return nil
}
