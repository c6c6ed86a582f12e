// Package ingest implements the ingest command, which runs one full
// ingestion cycle across all configured sources.
package ingest

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/nordbil/carcatalog/cmd/common"
)

// Command returns the ingest command for use in the root command.
func Command() *cobra.Command {
	var (
		cfgPath   string
		source    string
		batchOnly bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion cycle",
		Long: `Run one ingestion cycle: discover listing URLs for every configured
source, merge them into the crawl frontier, and resolve a sampled batch per
source. With --source, skip discovery and drain one frontier batch for that
source only; with --batch-only, do the same for every source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdcommon.NewApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck // connection teardown on exit

			ctx := cmd.Context()

			if source != "" {
				result, runErr := app.Orchestrator.RunFrontierBatch(ctx, source)
				if runErr != nil {
					return runErr
				}
				fmt.Printf("source %s: ingested=%d rejected=%d failed=%d\n",
					source, result.Ingested, result.Rejected, result.Failed)
				return nil
			}

			if batchOnly {
				results, runErr := app.Orchestrator.RunFrontierBatches(ctx)
				for id, result := range results {
					fmt.Printf("source %s: ingested=%d rejected=%d failed=%d\n",
						id, result.Ingested, result.Rejected, result.Failed)
				}
				return runErr
			}

			report, runErr := app.Orchestrator.RunIngestionCycle(ctx)
			for id, result := range report.Results {
				delta := report.Deltas[id]
				fmt.Printf("source %s: discovered=%d enqueued=%d reconfirmed=%d ingested=%d rejected=%d failed=%d\n",
					id, delta.Discovered, delta.Enqueued, delta.Reconfirmed,
					result.Ingested, result.Rejected, result.Failed)
			}
			for _, id := range report.FailedSources {
				fmt.Printf("source %s: pipeline failed\n", id)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file path")
	cmd.Flags().StringVar(&source, "source", "", "drain one frontier batch for this source, skipping discovery")
	cmd.Flags().BoolVar(&batchOnly, "batch-only", false, "drain one frontier batch per source, skipping discovery")

	return cmd
}
