// Package crawl implements the crawl command: one full discovery run over
// the configured scopes.
package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/threadcrawl/cmd/common"
	"github.com/jonesrussell/threadcrawl/internal/domain"
)

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var (
		scopes   []string
		full     bool
		deadline time.Duration
		output   string
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl over the configured scopes",
		Long: `Runs a browse pass (listings) and a search pass (keywords) over every
configured scope, honoring the request budget, and prints a run summary.
With --output the full result is written as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}

			if len(scopes) > 0 {
				deps.Config.Crawler.Scopes = scopes
			}
			if full {
				deps.Config.Crawler.Incremental = false
			}

			ctx := cmd.Context()
			if deadline > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, deadline)
				defer cancel()
			}

			storage, err := deps.OpenStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer storage.Close()

			c, err := deps.BuildCrawler(ctx, storage)
			if err != nil {
				return err
			}

			result, err := c.Run(ctx)
			if err != nil {
				return err
			}

			if result.Stats.StopReason == domain.StopFatalError {
				deps.Logger.Warn("Run ended on a fatal storage error; results are partial")
			}

			if output != "" {
				if writeErr := writeResult(output, result); writeErr != nil {
					return writeErr
				}
				deps.Logger.Info("Run result written", "path", output)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scopes, "scope", nil,
		"crawl only these scopes (overrides configured scopes)")
	cmd.Flags().BoolVar(&full, "full", false,
		"re-collect everything, ignoring recorded fingerprints")
	cmd.Flags().DurationVar(&deadline, "deadline", 0,
		"stop the run after this duration, keeping partial results")
	cmd.Flags().StringVar(&output, "output", "",
		"write the full run result as JSON to this file")

	return cmd
}

// writeResult serializes the run result to a file.
func writeResult(path string, result *domain.RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run result: %w", err)
	}
	return nil
}
