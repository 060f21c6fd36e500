package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs", "ls"},
	Short:   "List ingested documents",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	docs, err := ingestService.ListDocuments(cmd.Context())
	if err != nil {
		return err
	}

	if documentsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %-8s %-8s %s", doc.ID, doc.Format, statusLabel(doc.IndexStatus), doc.Filename)
		if len(doc.Tags) > 0 {
			cmd.Printf("  [%s]", strings.Join(doc.Tags, ", "))
		}
		cmd.Println()
	}
	cmd.Printf("\n%d document(s)\n", len(docs))
	return nil
}

func statusLabel(status domain.IndexStatus) string {
	if status == domain.IndexStatusPartial {
		return "partial"
	}
	return "ok"
}
