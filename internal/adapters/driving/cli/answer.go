package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	answerIssuers []string
	answerType    string
	answerJSON    bool
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer an analyst question over indexed documents",
	Long: `Runs a retrieval-grounded query: finds the most relevant chunks for
the question, asks the model for an answer, and prints it with its
source documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswer,
}

func init() {
	answerCmd.Flags().StringSliceVarP(&answerIssuers, "issuer", "i", nil, "issuer id (repeatable for comparisons)")
	answerCmd.Flags().StringVarP(&answerType, "type", "t", "general", "analysis type (general or comparative)")
	answerCmd.Flags().BoolVar(&answerJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(answerCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	result, err := analysisService.Answer(context.Background(), args[0], answerIssuers, answerType)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if answerJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Answer)
	if result.WarningType != "" {
		return nil
	}

	cmd.Println()
	cmd.Printf("Evidence: %d chunks across %d documents\n",
		result.Metadata.TotalChunksAnalyzed, len(result.Metadata.UniqueDocuments))
	for _, doc := range result.Metadata.UniqueDocuments {
		cmd.Printf("  - %s (%s, %s)\n", doc.Title, doc.Issuer, doc.Date)
	}

	return nil
}
