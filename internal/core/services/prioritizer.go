package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

// DefaultContextBudget is the character budget for assembled context.
// Sized to hold full financial statement tables from audit PDFs.
const DefaultContextBudget = 500000

// DefaultPerDocCap limits how many chunks a single document may
// contribute to the context, so one long rating report cannot crowd
// out the audited statements.
const DefaultPerDocCap = 50

// secondsPerYear converts Unix seconds to fractional years for the
// recency component.
const secondsPerYear = 365.25 * 24 * 3600

// Prioritizer orders chunks so the best evidence comes first: document
// type sets the tier, recency orders within a tier. Shared by the RAG
// answer path and the metrics extraction path.
type Prioritizer struct {
	policy    domain.ScoringPolicy
	perDocCap int
}

// PrioritizerOption configures the prioritizer.
type PrioritizerOption func(*Prioritizer)

// WithPerDocCap sets the per-document chunk cap for context assembly.
func WithPerDocCap(n int) PrioritizerOption {
	return func(p *Prioritizer) {
		if n > 0 {
			p.perDocCap = n
		}
	}
}

// NewPrioritizer creates a prioritizer with the given scoring policy.
func NewPrioritizer(policy domain.ScoringPolicy, opts ...PrioritizerOption) *Prioritizer {
	p := &Prioritizer{
		policy:    policy,
		perDocCap: DefaultPerDocCap,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Score computes a chunk's priority: the type-tier boost plus a small
// recency component. Tier boosts are large enough that any chunk of a
// higher tier outranks any chunk of a lower tier regardless of date.
func (p *Prioritizer) Score(chunk domain.Chunk) float64 {
	return p.policy.Boost(chunk.Metadata.DocType) + p.recency(chunk.Metadata.DocumentDate)
}

// recency maps a document date to fractional years since the Unix
// epoch. Unparseable or missing dates contribute zero, ranking below
// any dated chunk of the same tier.
func (p *Prioritizer) recency(dateStr string) float64 {
	t, ok := parseDocumentDate(dateStr)
	if !ok {
		return 0
	}

	years := float64(t.Unix()) / secondsPerYear
	if years < 0 {
		return 0
	}

	scale := p.policy.RecencyYearsPerUnit
	if scale <= 0 {
		scale = 1
	}
	return years / scale
}

// parseDocumentDate accepts the date notations found in the source
// data: ISO YYYY-MM-DD, DD/MM/YYYY, and DD-MM-YYYY, each optionally
// followed by a time portion which is ignored.
func parseDocumentDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	// Drop any trailing time portion ("2024-06-30T00:00:00" or
	// "30/06/2024 10:15").
	if idx := strings.IndexAny(dateStr, "T "); idx > 0 {
		dateStr = dateStr[:idx]
	}

	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Prioritize returns the chunks sorted descending by score. The sort
// is stable: equal scores keep their incoming (store) order.
func (p *Prioritizer) Prioritize(chunks []domain.Chunk) []domain.Chunk {
	sorted := make([]domain.Chunk, len(chunks))
	copy(sorted, chunks)

	sort.SliceStable(sorted, func(i, j int) bool {
		return p.Score(sorted[i]) > p.Score(sorted[j])
	})

	return sorted
}

// AssembleContext concatenates prioritized chunks into a prompt
// context, each preceded by a short metadata header, until the
// character budget is reached. Chunks are included whole or not at
// all; assembly stops at the first chunk that would overflow the
// budget. A single document contributes at most perDocCap chunks.
// Returns the context and the number of chunks included.
func (p *Prioritizer) AssembleContext(chunks []domain.Chunk, budget int) (string, int) {
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	var sb strings.Builder
	included := 0
	perDoc := make(map[string]int)

	for _, chunk := range chunks {
		docKey := chunk.Metadata.Title
		if docKey == "" {
			docKey = chunk.DocumentID
		}
		if perDoc[docKey] >= p.perDocCap {
			continue
		}

		block := formatChunkBlock(chunk)
		sep := 0
		if sb.Len() > 0 {
			sep = 2
		}
		if sb.Len()+sep+len(block) > budget {
			break
		}

		if sep > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(block)
		perDoc[docKey]++
		included++
	}

	return sb.String(), included
}

// formatChunkBlock renders one chunk with its provenance header.
func formatChunkBlock(chunk domain.Chunk) string {
	md := chunk.Metadata

	date := md.DocumentDate
	if date == "" {
		date = "Fecha desconocida"
	}

	return fmt.Sprintf("[%s] %s (%s, %s)\n%s",
		date, md.Title, md.IssuerName, md.DocType, chunk.Text)
}
