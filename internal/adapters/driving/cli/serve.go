package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driving/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the query, comparison, metrics, and search endpoints over
HTTP for the web frontend.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if analysisService == nil || metricsService == nil || retrievalService == nil || ingestService == nil {
		return errors.New("services not configured")
	}

	server := api.NewServer(analysisService, metricsService, retrievalService, ingestService)

	addr := serveAddr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	cmd.Printf("Listening on %s\n", addr)
	return server.Run(addr)
}
