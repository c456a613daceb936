package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [manifest.json]",
	Short: "Process an issuer's documents into the index",
	Long: `Reads a JSON manifest listing an issuer's disclosure documents,
downloads and chunks the relevant ones, and stores their embeddings.

Manifest format:
  {
    "issuerId": "bdf",
    "issuerName": "Banco de Finanzas",
    "documents": [
      {"title": "Estados Financieros Auditados 2024",
       "type": "Informe de los Auditores",
       "date": "2024-12-31",
       "url": "https://..."}
    ]
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// ingestManifest is the on-disk input format.
type ingestManifest struct {
	IssuerID   string `json:"issuerId"`
	IssuerName string `json:"issuerName"`
	Documents  []struct {
		Title string `json:"title"`
		Type  string `json:"type"`
		Date  string `json:"date"`
		URL   string `json:"url"`
	} `json:"documents"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	var manifest ingestManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}
	if manifest.IssuerID == "" {
		return errors.New("manifest is missing issuerId")
	}

	docs := make([]domain.Document, len(manifest.Documents))
	for i, d := range manifest.Documents {
		docs[i] = domain.Document{
			IssuerID: manifest.IssuerID,
			Title:    d.Title,
			Type:     domain.ClassifyDocument(d.Type, d.Title),
			Date:     d.Date,
			URL:      d.URL,
		}
	}

	stats, err := ingestService.ProcessIssuerDocuments(context.Background(),
		manifest.IssuerID, manifest.IssuerName, docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	cmd.Printf("Processed %d of %d documents (%d relevant, %d errors, %d chunks stored)\n",
		stats.ProcessedCount, stats.TotalDocs, stats.RelevantDocsCount,
		stats.ErrorCount, stats.ChunksStored)
	return nil
}
