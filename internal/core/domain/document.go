package domain

import (
	"strings"
	"time"
)

// DocumentType classifies a disclosure document.
type DocumentType string

// Known document types, ordered here from highest to lowest priority.
const (
	// DocTypeAuditedFinancials is a full-year audited financial statement.
	DocTypeAuditedFinancials DocumentType = "AUDITED_FINANCIALS"

	// DocTypeProspectus is an issuance prospectus.
	DocTypeProspectus DocumentType = "PROSPECTUS"

	// DocTypeRatingReport is a risk-rating agency report.
	DocTypeRatingReport DocumentType = "RATING_REPORT"

	// DocTypeRelevantFact is a "hecho relevante" market notice.
	DocTypeRelevantFact DocumentType = "RELEVANT_FACT"

	// DocTypeGeneric is any unclassified document.
	DocTypeGeneric DocumentType = "GENERIC"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocTypeAuditedFinancials, DocTypeProspectus, DocTypeRatingReport,
		DocTypeRelevantFact, DocTypeGeneric:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Document represents a disclosure document published by an issuer.
// It is created at ingestion and immutable thereafter.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// IssuerID identifies the issuer that published the document.
	IssuerID string

	// Title is the published document title.
	Title string

	// Type is the document classification.
	Type DocumentType

	// Date is the publication date as reported by the source.
	// The source mixes ISO (YYYY-MM-DD) and DD/MM/YYYY notations.
	Date string

	// URL is the original location of the document.
	URL string

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time
}

// ClassifyDocument derives a DocumentType from the raw type and title
// strings published by the exchange. The source data is Spanish and
// loosely formatted, so classification is keyword based.
func ClassifyDocument(rawType, title string) DocumentType {
	combined := strings.ToLower(rawType + " " + title)

	switch {
	case strings.Contains(combined, "auditado") ||
		strings.Contains(combined, "informe de los auditores"):
		return DocTypeAuditedFinancials
	case strings.Contains(combined, "prospecto") ||
		strings.Contains(combined, "informativo"):
		return DocTypeProspectus
	case strings.Contains(combined, "calificaci") ||
		strings.Contains(combined, "riesgo") ||
		strings.Contains(combined, "rating"):
		return DocTypeRatingReport
	case strings.Contains(combined, "relevante"):
		return DocTypeRelevantFact
	default:
		return DocTypeGeneric
	}
}

// RelevanceScore rates how useful a document is for financial analysis.
// Documents scoring zero are skipped during ingestion.
func (d Document) RelevanceScore() int {
	combined := strings.ToLower(d.Type.String() + " " + d.Title)

	score := 0

	// Audited statements carry the complete picture.
	if strings.Contains(combined, "auditado") && strings.Contains(combined, "financiero") {
		score += 100
	} else if strings.Contains(combined, "financiero") &&
		(strings.Contains(combined, "estado") || strings.Contains(combined, "eeff")) {
		score += 80
	}

	if strings.Contains(combined, "memoria anual") || strings.Contains(combined, "informe anual") {
		score += 70
	}

	if strings.Contains(combined, "calificaci") && strings.Contains(combined, "riesgo") {
		score += 50
	}

	if strings.Contains(combined, "relevante") {
		score += 30
	}

	if strings.Contains(combined, "financiero") {
		score += 20
	}
	if strings.Contains(combined, "informe") {
		score += 10
	}

	return score
}
