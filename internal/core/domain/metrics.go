package domain

import "time"

// IssuerMetrics is the normalized financial snapshot extracted for an
// issuer. Each extraction run replaces the previous record wholesale.
// Monetary figures are in millions of USD after normalization. Absent
// values are nil, never zero.
type IssuerMetrics struct {
	IssuerID   string `json:"issuerId"`
	IssuerName string `json:"issuerName"`

	Liquidez     LiquidityMetrics     `json:"liquidez"`
	Solvencia    SolvencyMetrics      `json:"solvencia"`
	Rentabilidad ProfitabilityMetrics `json:"rentabilidad"`
	Eficiencia   EfficiencyMetrics    `json:"eficiencia"`
	Capital      CapitalMetrics       `json:"capital"`
	Calificacion RatingMetrics        `json:"calificacion"`

	Metadata MetricsMetadata `json:"metadata"`

	// ExtractedAt is when this record was produced.
	ExtractedAt time.Time `json:"extractedAt"`

	// ChunksAnalyzed is the number of chunks actually included in the
	// context assembled for this extraction.
	ChunksAnalyzed int `json:"chunksAnalyzed"`
}

// LiquidityMetrics groups short-term position figures.
type LiquidityMetrics struct {
	ActivoCorriente *float64 `json:"activoCorriente"`
	PasivoCorriente *float64 `json:"pasivoCorriente"`
	RatioCirculante *float64 `json:"ratioCirculante"`
	CapitalTrabajo  *float64 `json:"capitalTrabajo"`
}

// SolvencyMetrics groups leverage figures and ratios.
type SolvencyMetrics struct {
	ActivoTotal     *float64 `json:"activoTotal"`
	PasivoTotal     *float64 `json:"pasivoTotal"`
	Patrimonio      *float64 `json:"patrimonio"`
	DeudaPatrimonio *float64 `json:"deudaPatrimonio"`
	DeudaActivos    *float64 `json:"deudaActivos"`
}

// ProfitabilityMetrics groups income statement figures and returns.
type ProfitabilityMetrics struct {
	IngresosTotales   *float64 `json:"ingresosTotales"`
	GastosFinancieros *float64 `json:"gastosFinancieros"`
	UtilidadNeta      *float64 `json:"utilidadNeta"`
	MargenNeto        *float64 `json:"margenNeto"`
	ROE               *float64 `json:"roe"`
	ROA               *float64 `json:"roa"`
}

// EfficiencyMetrics groups asset utilisation ratios.
type EfficiencyMetrics struct {
	RotacionActivos *float64 `json:"rotacionActivos"`
	RotacionCartera *float64 `json:"rotacionCartera"`
}

// CapitalMetrics groups the balance sheet totals used as primitives for
// derived ratios.
type CapitalMetrics struct {
	ActivosTotales *float64 `json:"activosTotales"`
	Pasivos        *float64 `json:"pasivos"`
	Patrimonio     *float64 `json:"patrimonio"`
}

// RatingMetrics holds the most recent risk rating.
type RatingMetrics struct {
	Rating      *string `json:"rating"`
	Perspectiva *string `json:"perspectiva"`
	Fecha       *string `json:"fecha"`
}

// MetricsMetadata describes the provenance of an extraction.
type MetricsMetadata struct {
	// Periodo is the financial cut-off period, e.g. "Dic-2024".
	Periodo string `json:"periodo"`

	// Moneda is the output currency. Always "USD" after normalization.
	Moneda string `json:"moneda"`

	// SimboloEncontrado is the currency symbol the source reported.
	SimboloEncontrado string `json:"simbolo_encontrado"`

	// Fuente names the document the figures came from.
	Fuente string `json:"fuente"`

	// Nota documents whether and why a currency conversion occurred.
	Nota string `json:"nota,omitempty"`
}

// Comparison pairs an issuer with its metrics for side-by-side views.
type Comparison struct {
	IssuerID   string        `json:"issuerId"`
	IssuerName string        `json:"issuerName"`
	Metrics    IssuerMetrics `json:"metrics"`
}
