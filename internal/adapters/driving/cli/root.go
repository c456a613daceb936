// Package cli implements the command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driving"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

// Services are the driving ports the commands run against, wired by
// the composition root before Execute.
type Services struct {
	Retrieval driving.RetrievalService
	Analysis  driving.AnalysisService
	Metrics   driving.MetricsService
	Ingest    driving.IngestService

	// ServeAddr is the listen address for the serve command.
	ServeAddr string
}

var (
	retrievalService driving.RetrievalService
	analysisService  driving.AnalysisService
	metricsService   driving.MetricsService
	ingestService    driving.IngestService
	serveAddr        string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "nicmarket",
	Short: "Financial disclosure analysis for Nicaraguan securities issuers",
	Long: `nicmarket indexes issuer disclosure documents from the Nicaraguan
stock exchange, answers analyst questions over them, and extracts
normalized financial metrics in USD.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute wires the services and runs the root command.
func Execute(services Services) error {
	retrievalService = services.Retrieval
	analysisService = services.Analysis
	metricsService = services.Metrics
	ingestService = services.Ingest
	serveAddr = services.ServeAddr

	return rootCmd.Execute()
}
