package cli

import (
	"github.com/spf13/cobra"
)

func newStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Provider counts, debt totals and top providers by invoiced amount",
		Example: `  ledgerctl stats
  ledgerctl --session mayo.json stats -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			st := app.Store.ProvidersStats()
			if app.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			return renderStats(cmd.OutOrStdout(), st)
		},
	}
}
