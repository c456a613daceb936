package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare [issuer-id] [issuer-id] ...",
	Short: "Compare stored metrics across issuers",
	Long: `Prints the extracted financial metrics of two or more issuers side by
side. Issuers without an extraction run yet are omitted.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output the comparison as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	comparisons, err := analysisService.CompareIssuers(context.Background(), args)
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if compareJSON {
		data, err := json.MarshalIndent(comparisons, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal comparison: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(comparisons) == 0 {
		cmd.Println("No metrics available for the requested issuers. Run extract first.")
		return nil
	}

	for _, c := range comparisons {
		m := c.Metrics
		cmd.Printf("%s (%s)\n", c.IssuerName, c.IssuerID)
		cmd.Printf("  Periodo: %s  Moneda: %s\n", m.Metadata.Periodo, m.Metadata.Moneda)
		printMetric(cmd, "Activos totales (MM USD)", m.Capital.ActivosTotales)
		printMetric(cmd, "Patrimonio (MM USD)", m.Capital.Patrimonio)
		printMetric(cmd, "Utilidad neta (MM USD)", m.Rentabilidad.UtilidadNeta)
		printMetric(cmd, "Margen neto (%)", m.Rentabilidad.MargenNeto)
		printMetric(cmd, "ROE (%)", m.Rentabilidad.ROE)
		printMetric(cmd, "Ratio circulante", m.Liquidez.RatioCirculante)
		printMetric(cmd, "Deuda/Patrimonio", m.Solvencia.DeudaPatrimonio)
		if m.Calificacion.Rating != nil {
			cmd.Printf("  %-28s %s\n", "Calificación", *m.Calificacion.Rating)
		}
		cmd.Println()
	}

	return nil
}

func printMetric(cmd *cobra.Command, label string, value *float64) {
	if value == nil {
		cmd.Printf("  %-28s n/d\n", label)
		return
	}
	cmd.Printf("  %-28s %.2f\n", label, *value)
}
