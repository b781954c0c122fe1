// Package schedule implements the schedule command: recurring crawl runs on
// a cron expression.
package schedule

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/threadcrawl/cmd/common"
)

// DefaultSpec runs a crawl every six hours.
const DefaultSpec = "@every 6h"

// Command returns the schedule command for use in the root command.
func Command() *cobra.Command {
	var (
		spec      string
		immediate bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run crawls on a recurring schedule",
		Long: `Runs crawls on a cron schedule until interrupted. The rate governor's
persisted daily budget carries across runs, so closely spaced schedules
degrade gracefully instead of over-requesting.`,
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

			c, err := deps.BuildCrawler(ctx, storage)
			if err != nil {
				return err
			}

			runOnce := func() {
				if _, runErr := c.Run(ctx); runErr != nil {
					deps.Logger.Error("Scheduled crawl failed", "error", runErr)
				}
			}

			// A long run must not stack on top of itself.
			scheduler := cron.New(cron.WithChain(
				cron.SkipIfStillRunning(cron.DiscardLogger),
			))
			if _, addErr := scheduler.AddFunc(spec, runOnce); addErr != nil {
				return fmt.Errorf("invalid cron spec %q: %w", spec, addErr)
			}

			if immediate {
				runOnce()
			}

			scheduler.Start()
			deps.Logger.Info("Scheduler started", "spec", spec)

			<-ctx.Done()
			deps.Logger.Info("Shutdown signal received, waiting for running crawl")
			<-scheduler.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", DefaultSpec,
		"cron expression for recurring runs (robfig/cron format)")
	cmd.Flags().BoolVar(&immediate, "immediate", false,
		"run one crawl right away before the first scheduled run")

	return cmd
}
