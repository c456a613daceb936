package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

// cordobaMarkers are the currency labels and symbols under which
// Nicaraguan filings report córdoba figures.
var cordobaMarkers = []string{"NIO", "C$", "CORDOBA", "CÓRDOBA"}

// NormalizeCurrency rewrites all monetary figures of a metrics record
// to USD. Figures reported in córdobas are divided by the policy rate.
// Figures reported as USD are kept, unless total assets exceed the
// plausibility bound for this market, in which case the record is
// treated as mislabelled córdobas and converted anyway. Ratios and
// percentages are left untouched. The metadata note records any
// conversion performed.
func NormalizeCurrency(m *domain.IssuerMetrics, policy domain.CurrencyPolicy) {
	if m == nil || policy.Rate <= 0 {
		return
	}

	reported := m.Metadata.Moneda + " " + m.Metadata.SimboloEncontrado
	isCordoba := containsCordobaMarker(reported)

	forced := false
	if !isCordoba {
		if total := m.Capital.ActivosTotales; total != nil && *total > policy.MaxPlausibleUSD {
			forced = true
		} else if total := m.Solvencia.ActivoTotal; total != nil && *total > policy.MaxPlausibleUSD {
			forced = true
		}
	}

	if !isCordoba && !forced {
		m.Metadata.Moneda = "USD"
		return
	}

	for _, field := range monetaryFields(m) {
		convertField(field, policy.Rate)
	}

	m.Metadata.Moneda = "USD"
	if forced {
		logger.Warn("issuer %s: USD-labelled figures exceed plausible bound, converting as córdobas", m.IssuerID)
		m.Metadata.Nota = fmt.Sprintf(
			"Converted from córdobas to USD at %.4f (figures labelled USD exceeded the plausible range for this market)",
			policy.Rate)
	} else {
		m.Metadata.Nota = fmt.Sprintf("Converted from córdobas to USD at %.4f", policy.Rate)
	}
}

func containsCordobaMarker(s string) bool {
	upper := strings.ToUpper(s)
	for _, marker := range cordobaMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// monetaryFields lists the absolute-amount fields subject to
// conversion. Ratios, percentages, and turnover figures stay as is.
func monetaryFields(m *domain.IssuerMetrics) []**float64 {
	return []**float64{
		&m.Liquidez.ActivoCorriente,
		&m.Liquidez.PasivoCorriente,
		&m.Liquidez.CapitalTrabajo,
		&m.Solvencia.ActivoTotal,
		&m.Solvencia.PasivoTotal,
		&m.Solvencia.Patrimonio,
		&m.Rentabilidad.IngresosTotales,
		&m.Rentabilidad.GastosFinancieros,
		&m.Rentabilidad.UtilidadNeta,
		&m.Capital.ActivosTotales,
		&m.Capital.Pasivos,
		&m.Capital.Patrimonio,
	}
}

func convertField(field **float64, rate float64) {
	if *field == nil {
		return
	}
	converted := decimal.NewFromFloat(**field).
		Div(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
	*field = &converted
}
