package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/casedex/internal/adapters/driving/watcher"
	"github.com/custodia-labs/casedex/internal/core/domain"
)

var watchTags string

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and ingest new files",
	Long: `Watch ingests every supported file created in the directory until
interrupted. Files with unsupported extensions are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTags, "tags", "t", "", "comma-separated tags to apply to ingested files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	tags, err := domain.ParseTagList(watchTags)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s, press Ctrl-C to stop\n", args[0])
	return watcher.New(ingestService, tags).Watch(cmd.Context(), args[0])
}
