package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <bundle.zip>",
	Short: "Extract the marker-matching invoices of one zip bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rep, err := svc.pipeline.RunArchive(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	addOutputFlags(archiveCmd)
	rootCmd.AddCommand(archiveCmd)
}
