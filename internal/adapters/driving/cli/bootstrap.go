package cli

import (
	"github.com/spf13/cobra"
)

var bootstrapName string

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the Workplace Search content source",
	Long: `Creates a custom content source with the connector's document schema
and prints its id. Put the id under enterprise_search.source_id before
running any sync command.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := app.search.CreateContentSource(cmd.Context(), bootstrapName)
		if err != nil {
			return err
		}
		cmd.Printf("Content source created: %s\n", id)
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVarP(&bootstrapName, "name", "n", "Zoom", "display name of the content source")
	rootCmd.AddCommand(bootstrapCmd)
}
