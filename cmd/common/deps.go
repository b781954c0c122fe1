// Package common wires shared command dependencies: configuration, logging,
// and the storage backend behind the crawl record and rate limit stores.
package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/threadcrawl/internal/cache"
	"github.com/jonesrussell/threadcrawl/internal/config"
	"github.com/jonesrussell/threadcrawl/internal/crawler"
	"github.com/jonesrussell/threadcrawl/internal/database"
	"github.com/jonesrussell/threadcrawl/internal/logger"
	"github.com/jonesrussell/threadcrawl/internal/ratelimit"
	"github.com/jonesrussell/threadcrawl/internal/record"
	"github.com/jonesrussell/threadcrawl/internal/source/reddit"
)

// Deps holds dependencies shared by every subcommand.
type Deps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewCommandDeps loads configuration and builds the logger, honoring the
// root command's --config and --debug persistent flags.
func NewCommandDeps(cmd *cobra.Command) (*Deps, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.App.Debug = true
		cfg.Logger.Level = "debug"
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Deps{Config: cfg, Logger: log}, nil
}

// Storage bundles the persistence stores of the selected backend.
type Storage struct {
	Records   record.Store
	RateLimit ratelimit.StateStore

	db    *sqlx.DB
	redis *redis.Client
}

// OpenStorage connects the backend selected by storage.backend and returns
// the stores. The caller must Close it.
func (d *Deps) OpenStorage(ctx context.Context) (*Storage, error) {
	switch d.Config.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresConnection(d.Config.Database)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &Storage{
			Records:   database.NewRecordRepository(db),
			RateLimit: database.NewRateLimitRepository(db),
			db:        db,
		}, nil

	case config.BackendRedis:
		client, err := cache.NewClient(ctx, d.Config.Redis)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Records:   cache.NewRecordStore(client),
			RateLimit: cache.NewRateLimitStore(client),
			redis:     client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", d.Config.Storage.Backend)
	}
}

// DB returns the underlying sqlx connection, nil for non-Postgres backends.
func (s *Storage) DB() *sqlx.DB {
	return s.db
}

// Close releases backend connections.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// BuildCrawler assembles a ready-to-run crawler on top of the open storage.
func (d *Deps) BuildCrawler(ctx context.Context, storage *Storage) (*crawler.Crawler, error) {
	governor, err := ratelimit.New(ctx, d.Config.RateLimit, storage.RateLimit, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate governor: %w", err)
	}

	src := reddit.NewClient(d.Config.Reddit, d.Logger)
	return crawler.New(src, governor, storage.Records, d.Config.Crawler, d.Logger), nil
}
