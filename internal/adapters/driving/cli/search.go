package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchIssuer string
	searchTopK   int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed disclosure documents",
	Long: `Performs semantic search across indexed chunks and prints the best
matches with their source documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchIssuer, "issuer", "i", "", "restrict to one issuer id")
	searchCmd.Flags().IntVarP(&searchTopK, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	results, err := retrievalService.Search(context.Background(), args[0], searchIssuer, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, result := range results {
		md := result.Chunk.Metadata
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, md.Title, result.Similarity)
		cmd.Printf("      %s | %s | %s\n", md.IssuerName, md.DocType, md.DocumentDate)

		snippet := result.Chunk.Text
		if len(snippet) > 160 {
			snippet = snippet[:160] + "..."
		}
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}

	return nil
}
