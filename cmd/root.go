// Package cmd implements the threadcrawl command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/threadcrawl/cmd/crawl"
	"github.com/jonesrussell/threadcrawl/cmd/record"
	"github.com/jonesrussell/threadcrawl/cmd/schedule"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "threadcrawl",
	Short: "An incremental discussion-thread crawler",
	Long: `threadcrawl walks discussion-platform listings and keyword searches,
collects relevant posts and their reply trees, and skips content that has
not changed since the previous run. All provider traffic is paced through
a persisted adaptive rate governor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command until completion or interrupt.
func Execute() error {
	// .env is loaded before any command so config sees its variables.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("threadcrawl version %s\n", Version)
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(record.Command())
}
