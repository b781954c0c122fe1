// Package record implements the record command group for inspecting the
// persisted crawl ledger.
package record

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/threadcrawl/cmd/common"
	"github.com/jonesrussell/threadcrawl/internal/config"
	"github.com/jonesrussell/threadcrawl/internal/database"
	"github.com/jonesrussell/threadcrawl/internal/domain"
)

// Command returns the record command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect the persisted crawl ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newStatsCommand())
	return cmd
}

// scopeRow is one partition's view in the stats table.
type scopeRow struct {
	scope     string
	posts     int
	replies   int
	lastCrawl time.Time
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-scope ledger sizes and last crawl times",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			storage, err := deps.OpenStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer storage.Close()

			var rows []scopeRow
			if deps.Config.Storage.Backend == config.BackendPostgres {
				rows, err = postgresRows(ctx, storage.DB())
			} else {
				rows, err = storeRows(ctx, storage, deps.Config.Crawler.Scopes)
			}
			if err != nil {
				return err
			}

			if len(rows) == 0 {
				deps.Logger.Info("No crawl records persisted yet")
				return nil
			}
			renderTable(rows)
			return nil
		},
	}
}

// postgresRows lists every persisted partition, including scopes no longer
// configured, via the summary query.
func postgresRows(ctx context.Context, db *sqlx.DB) ([]scopeRow, error) {
	summaries, err := database.NewRecordRepository(db).Summaries(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]scopeRow, 0, len(summaries))
	for _, s := range summaries {
		row := scopeRow{scope: s.Scope, posts: s.Posts, replies: s.Replies}
		if s.LastCrawl.Valid {
			row.lastCrawl = s.LastCrawl.Time
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// renderTable prints the ledger summary.
func renderTable(rows []scopeRow) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Scope", "Posts", "Replies", "Last Crawl"})
	for _, row := range rows {
		lastCrawl := "never"
		if !row.lastCrawl.IsZero() {
			lastCrawl = row.lastCrawl.Format(time.RFC3339)
		}
		t.AppendRow(table.Row{row.scope, row.posts, row.replies, lastCrawl})
	}
	t.Render()
}

// storeRows loads the configured scopes' partitions through the generic
// store interface (used by backends without a summary query).
func storeRows(ctx context.Context, storage *common.Storage, scopes []string) ([]scopeRow, error) {
	var rows []scopeRow
	for _, scope := range scopes {
		for _, partition := range []string{scope, domain.SearchPartition(scope)} {
			part, err := storage.Records.Load(ctx, partition)
			if err != nil {
				return nil, fmt.Errorf("failed to load crawl record %s: %w", partition, err)
			}
			posts, replies := part.Size()
			if posts == 0 && replies == 0 && part.LastCrawl.IsZero() {
				continue
			}
			rows = append(rows, scopeRow{
				scope:     partition,
				posts:     posts,
				replies:   replies,
				lastCrawl: part.LastCrawl,
			})
		}
	}
	return rows, nil
}
