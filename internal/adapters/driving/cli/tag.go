package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

var tagCmd = &cobra.Command{
	Use:     "tag <document-id> <tags>",
	Aliases: []string{"tags"},
	Short:   "Replace a document's tags",
	Long: `Tag replaces a document's tag set with the given comma-separated
list. An empty list clears all tags. Passages indexed before the change
keep the tag snapshot taken at ingestion time; re-ingest the document
to refresh them.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	var tags []string
	if len(args) == 2 {
		var err error
		if tags, err = domain.ParseTagList(args[1]); err != nil {
			return err
		}
	}

	if err := ingestService.Retag(cmd.Context(), args[0], tags); err != nil {
		return err
	}

	if len(tags) == 0 {
		cmd.Printf("Cleared tags on %s\n", args[0])
	} else {
		cmd.Printf("Tagged %s with %v\n", args[0], tags)
	}
	return nil
}
