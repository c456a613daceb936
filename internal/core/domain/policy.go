package domain

// ScoringPolicy holds the chunk prioritization constants. The boost for
// a document type tier must exceed the whole recency range so that type
// strictly dominates date; recency only orders chunks within a tier.
type ScoringPolicy struct {
	// TypeBoosts maps each document type to its tier boost. Unlisted
	// types score zero.
	TypeBoosts map[DocumentType]float64

	// RecencyYearsPerUnit scales the recency component: a document date
	// contributes its fractional years since the Unix epoch divided by
	// this value. With the default of 1 the component stays under 100
	// for any representable date, well inside the 1000-point tier gaps.
	RecencyYearsPerUnit float64
}

// DefaultScoringPolicy returns the production scoring constants.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		TypeBoosts: map[DocumentType]float64{
			DocTypeAuditedFinancials: 4000,
			DocTypeProspectus:        3000,
			DocTypeRatingReport:      2000,
		},
		RecencyYearsPerUnit: 1,
	}
}

// Boost returns the tier boost for a document type.
func (p ScoringPolicy) Boost(t DocumentType) float64 {
	return p.TypeBoosts[t]
}

// CurrencyPolicy holds the currency normalization constants.
type CurrencyPolicy struct {
	// Rate is the NIO per USD exchange rate used for conversion.
	Rate float64

	// MaxPlausibleUSD is the sanity bound, in millions of USD, above
	// which a figure reported as USD is treated as misclassified local
	// currency. The largest issuer in this market holds around 4,000
	// million USD in assets.
	MaxPlausibleUSD float64
}

// DefaultCurrencyPolicy returns the production currency constants.
func DefaultCurrencyPolicy() CurrencyPolicy {
	return CurrencyPolicy{
		Rate:            36.6243,
		MaxPlausibleUSD: 20000,
	}
}
