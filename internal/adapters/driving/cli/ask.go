package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

var askLimit int

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question answered from indexed documents",
	Long: `Ask retrieves the most relevant passages and has the configured
language model compose an answer grounded in them. The cited sources
are always printed alongside the answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "l", 0, "maximum passages to ground the answer on")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if llmService == nil {
		return fmt.Errorf("%w: set llm.api_key or OPENAI_API_KEY", domain.ErrLLMUnavailable)
	}

	query := strings.Join(args, " ")

	results, err := retrievalService.Retrieve(cmd.Context(), query, domain.RetrieveOptions{TopK: askLimit})
	if err != nil {
		return err
	}

	citations, err := retrievalService.Cite(cmd.Context(), results)
	if err != nil {
		return err
	}

	answer, err := llmService.Answer(cmd.Context(), query, citations)
	if err != nil {
		return err
	}

	cmd.Println(answer)
	if len(citations) > 0 {
		cmd.Println("\nSources:")
		for i, c := range citations {
			cmd.Printf("  [%d] %s, page %d\n", i+1, c.Filename, c.PageIndex+1)
		}
	}
	return nil
}
