package cli

import (
	"github.com/spf13/cobra"
)

var deletionSyncCmd = &cobra.Command{
	Use:   "deletion-sync",
	Short: "Remove indexed documents whose source object was deleted",
	Long: `Validates every document recorded by previous sync runs against the
Zoom account and removes the ones whose source object no longer exists.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := app.requireSourceID(); err != nil {
			return err
		}
		return app.deletion.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(deletionSyncCmd)
}
