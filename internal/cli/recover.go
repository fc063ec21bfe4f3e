package cli

import (
	"github.com/spf13/cobra"
)

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Restore missing or damaged collections from their backups",
		Long: `Restore missing or damaged collections from their backups, then list
each collection's item count, backup size and last update time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			recovered, err := app.Repository.Recover(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(opts.Output, cmd.OutOrStdout()).Print(RecoverResult{
				Recovered:   recovered || app.Recovered,
				Collections: app.Repository.Status(cmd.Context()),
			})
			return nil
		},
	}
}
