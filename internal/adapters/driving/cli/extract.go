package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	extractName string
	extractGet  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [issuer-id]",
	Short: "Extract normalized financial metrics for an issuer",
	Long: `Runs the metrics pipeline for one issuer: prioritizes its indexed
chunks, asks the model for a structured record, normalizes all figures
to USD, derives missing ratios, and stores the result. With --stored
it prints the existing record without re-running the pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractName, "name", "", "", "issuer display name")
	extractCmd.Flags().BoolVar(&extractGet, "stored", false, "print the stored record instead of extracting")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if metricsService == nil {
		return errors.New("metrics service not configured")
	}

	issuerID := args[0]
	ctx := context.Background()

	if extractGet {
		record, err := metricsService.Get(ctx, issuerID)
		if err != nil {
			return fmt.Errorf("get metrics failed: %w", err)
		}
		return printJSON(cmd, record)
	}

	name := extractName
	if name == "" {
		name = issuerID
	}

	record, err := metricsService.Extract(ctx, issuerID, name)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	cmd.Printf("Extracted metrics for %s (%d chunks analyzed)\n", record.IssuerName, record.ChunksAnalyzed)
	if record.Metadata.Nota != "" {
		cmd.Printf("Note: %s\n", record.Metadata.Nota)
	}
	return printJSON(cmd, record)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
