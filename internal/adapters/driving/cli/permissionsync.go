package cli

import (
	"github.com/spf13/cobra"
)

var permissionSyncCmd = &cobra.Command{
	Use:   "permission-sync",
	Short: "Push the identity mapping file into the index's permission store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := app.requireSourceID(); err != nil {
			return err
		}
		return app.permissions.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(permissionSyncCmd)
}
