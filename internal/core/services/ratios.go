package services

import (
	"github.com/shopspring/decimal"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

// DeriveRatios fills in ratios that can be computed from the extracted
// primitives. Values the model already reported are never overwritten;
// derivation only fills gaps. Divisions by zero or missing operands
// leave the field nil.
func DeriveRatios(m *domain.IssuerMetrics) {
	if m == nil {
		return
	}

	// Balance sheet identity: assets = liabilities + equity.
	if m.Capital.ActivosTotales == nil && m.Capital.Pasivos != nil && m.Capital.Patrimonio != nil {
		m.Capital.ActivosTotales = round2(*m.Capital.Pasivos + *m.Capital.Patrimonio)
	}

	activoTotal := firstOf(m.Solvencia.ActivoTotal, m.Capital.ActivosTotales)
	pasivoTotal := firstOf(m.Solvencia.PasivoTotal, m.Capital.Pasivos)
	patrimonio := firstOf(m.Solvencia.Patrimonio, m.Capital.Patrimonio)

	if m.Liquidez.RatioCirculante == nil {
		m.Liquidez.RatioCirculante = safeDiv(m.Liquidez.ActivoCorriente, m.Liquidez.PasivoCorriente, 1)
	}
	if m.Liquidez.CapitalTrabajo == nil && m.Liquidez.ActivoCorriente != nil && m.Liquidez.PasivoCorriente != nil {
		m.Liquidez.CapitalTrabajo = round2(*m.Liquidez.ActivoCorriente - *m.Liquidez.PasivoCorriente)
	}

	if m.Solvencia.DeudaPatrimonio == nil {
		m.Solvencia.DeudaPatrimonio = safeDiv(pasivoTotal, patrimonio, 1)
	}
	if m.Solvencia.DeudaActivos == nil {
		m.Solvencia.DeudaActivos = safeDiv(pasivoTotal, activoTotal, 100)
	}

	if m.Rentabilidad.MargenNeto == nil {
		m.Rentabilidad.MargenNeto = safeDiv(m.Rentabilidad.UtilidadNeta, m.Rentabilidad.IngresosTotales, 100)
	}
	if m.Rentabilidad.ROE == nil {
		m.Rentabilidad.ROE = safeDiv(m.Rentabilidad.UtilidadNeta, patrimonio, 100)
	}
	if m.Rentabilidad.ROA == nil {
		m.Rentabilidad.ROA = safeDiv(m.Rentabilidad.UtilidadNeta, activoTotal, 100)
	}

	if m.Eficiencia.RotacionActivos == nil {
		m.Eficiencia.RotacionActivos = safeDiv(m.Rentabilidad.IngresosTotales, activoTotal, 1)
	}
}

// firstOf returns the first non-nil pointer.
func firstOf(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// safeDiv computes num/den*factor rounded to 2 decimals, or nil when
// either operand is missing or the denominator is zero.
func safeDiv(num, den *float64, factor float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return round2(*num / *den * factor)
}

func round2(v float64) *float64 {
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return &rounded
}
