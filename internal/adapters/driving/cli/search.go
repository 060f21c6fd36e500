package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

var (
	searchLimit int
	searchTags  string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed documents by meaning",
	Long: `Search returns the passages most similar to the query, with source
citations. Tag filters can be given inline as tag:<name> or #<name>
tokens in the query, or via --tags; all filters must match.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum results (0 uses the configured default)")
	searchCmd.Flags().StringVarP(&searchTags, "tags", "t", "", "comma-separated tag filter")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	tags, err := domain.ParseTagList(searchTags)
	if err != nil {
		return err
	}

	results, err := retrievalService.Retrieve(cmd.Context(), query, domain.RetrieveOptions{
		TopK: searchLimit,
		Tags: tags,
	})
	if err != nil {
		return err
	}

	citations, err := retrievalService.Cite(cmd.Context(), results)
	if err != nil {
		return err
	}

	if searchJSON {
		return outputCitationsJSON(cmd, citations)
	}
	outputCitations(cmd, citations)
	return nil
}

func outputCitationsJSON(cmd *cobra.Command, citations []domain.Citation) error {
	data, err := json.MarshalIndent(citations, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func outputCitations(cmd *cobra.Command, citations []domain.Citation) {
	if len(citations) == 0 {
		cmd.Println("No results found.")
		return
	}

	for i, c := range citations {
		cmd.Printf("%d. %s, page %d (score %.3f)\n", i+1, c.Filename, c.PageIndex+1, c.Score)
		cmd.Printf("   %s\n\n", c.Excerpt)
	}
}
