// Package status implements the status command, which reports catalog and
// frontier depth per configured source.
package status

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/nordbil/carcatalog/cmd/common"
)

// Command returns the status command for use in the root command.
func Command() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report active listings and frontier depth per source",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdcommon.NewApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck // connection teardown on exit

			ctx := cmd.Context()

			active, err := app.Listings.CountActive(ctx)
			if err != nil {
				return err
			}

			for _, src := range app.Config.Sources {
				queued, countErr := app.Frontier.Count(ctx, src.ID)
				if countErr != nil {
					return countErr
				}
				fmt.Printf("source %s: active=%d queued=%d\n", src.ID, active[src.ID], queued)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file path")

	return cmd
}
