package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

var fullSyncCmd = &cobra.Command{
	Use:   "full-sync",
	Short: "Fetch and index everything within the configured time range",
	Long: `Fetches every enabled object type over the configured start and end
time and indexes the documents, regardless of stored checkpoints.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := app.requireSourceID(); err != nil {
			return err
		}
		return app.runner.Run(cmd.Context(), domain.RunFull)
	},
}

func init() {
	rootCmd.AddCommand(fullSyncCmd)
}
