// Package maintain implements the maintain command, which runs the staleness
// sweep followed by catalog deduplication.
package maintain

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/nordbil/carcatalog/cmd/common"
)

// Command returns the maintain command for use in the root command.
func Command() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Run catalog maintenance",
		Long: `Run catalog maintenance: deactivate listings unseen for longer than
the staleness threshold, then deduplicate the active catalog in three passes
(within-source, aggregator-versus-dealer, exact attribute match).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdcommon.NewApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck // connection teardown on exit

			report, runErr := app.Orchestrator.RunMaintenance(cmd.Context())
			fmt.Printf("deactivated=%d dedup: within_source=%d aggregator=%d exact_match=%d\n",
				report.Deactivated,
				report.Dedup.WithinSource, report.Dedup.Aggregator, report.Dedup.ExactMatch)
			return runErr
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file path")

	return cmd
}
