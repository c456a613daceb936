package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var insightsJSON bool

var insightsCmd = &cobra.Command{
	Use:   "insights [issuer-id]",
	Short: "Generate an executive summary for an issuer",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsights,
}

func init() {
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "output the insight as JSON")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	result, err := analysisService.Insights(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("insights failed: %w", err)
	}

	if insightsJSON {
		return printJSON(cmd, result)
	}

	if !result.Success {
		cmd.Println(result.Message)
		return nil
	}

	cmd.Println(result.Insight.Insight)
	cmd.Println()
	cmd.Printf("Sentiment: %s (confidence %.2f)\n", result.Insight.Sentiment, result.Insight.Confidence)
	for _, citation := range result.Insight.Citations {
		cmd.Printf("  - %s\n", citation)
	}
	return nil
}
