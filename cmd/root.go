// Package cmd implements the command-line interface for the vehicle listing
// catalog. It provides the root command and subcommands for ingestion,
// maintenance, and the scheduling daemon.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cmdingest "github.com/nordbil/carcatalog/cmd/ingest"
	cmdmaintain "github.com/nordbil/carcatalog/cmd/maintain"
	cmdscheduler "github.com/nordbil/carcatalog/cmd/scheduler"
	cmdstatus "github.com/nordbil/carcatalog/cmd/status"
)

// version is set at build time with -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "carcatalog",
	Short: "A vehicle listing aggregation catalog",
	Long: `carcatalog crawls configured vehicle listing sites, tracks discovered
listings through an incremental crawl frontier, and maintains a deduplicated
catalog of active vehicles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so configuration sees the environment.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("carcatalog version %s\n", version)
		},
	})

	rootCmd.AddCommand(cmdingest.Command())
	rootCmd.AddCommand(cmdmaintain.Command())
	rootCmd.AddCommand(cmdscheduler.Command())
	rootCmd.AddCommand(cmdstatus.Command())
}
