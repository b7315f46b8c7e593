package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

var incrementalSyncCmd = &cobra.Command{
	Use:   "incremental-sync",
	Short: "Fetch and index changes since the last committed checkpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := app.requireSourceID(); err != nil {
			return err
		}
		return app.runner.Run(cmd.Context(), domain.RunIncremental)
	},
}

func init() {
	rootCmd.AddCommand(incrementalSyncCmd)
}
