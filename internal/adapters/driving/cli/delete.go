package cli

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>...",
	Short: "Delete documents and their indexed passages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	for _, id := range args {
		if err := ingestService.Delete(cmd.Context(), id); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", id)
	}
	return nil
}
