package domain

// SourceRef points an answer back at the chunk evidence it used.
type SourceRef struct {
	DocumentTitle string       `json:"documentTitle"`
	IssuerName    string       `json:"issuerName"`
	DocumentType  DocumentType `json:"documentType"`
	DocumentDate  string       `json:"documentDate"`
	Similarity    float64      `json:"similarity"`
	Excerpt       string       `json:"excerpt"`
}

// UniqueDocument summarises one distinct document cited in an answer.
type UniqueDocument struct {
	Title      string       `json:"title"`
	Type       DocumentType `json:"type"`
	Date       string       `json:"date"`
	Issuer     string       `json:"issuer"`
	ChunkCount int          `json:"chunkCount"`
}

// AnswerMetadata describes the evidence behind an answer.
type AnswerMetadata struct {
	TotalChunksAnalyzed int              `json:"totalChunksAnalyzed"`
	UniqueDocuments     []UniqueDocument `json:"uniqueDocuments"`
	YearsFound          []string         `json:"yearsFound"`
	AnalysisType        string           `json:"analysisType"`
}

// AnswerResult is the outcome of a RAG query.
type AnswerResult struct {
	Answer   string         `json:"answer"`
	Sources  []SourceRef    `json:"sources"`
	Metadata AnswerMetadata `json:"metadata"`

	// WarningType is set when the answer is a canned notice rather than
	// generated analysis, e.g. "no_relevant_docs".
	WarningType string `json:"warningType,omitempty"`
}

// Insight is a generated executive summary for an issuer.
type Insight struct {
	Insight     string   `json:"insight"`
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	Metrics     []string `json:"metrics"`
	Citations   []string `json:"citations"`
	GeneratedAt string   `json:"generatedAt"`
}

// InsightResult wraps an insight with its availability flag.
type InsightResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Insight *Insight `json:"insight,omitempty"`
}

// IngestStats summarises one document processing run for an issuer.
type IngestStats struct {
	ProcessedCount    int `json:"processedCount"`
	ErrorCount        int `json:"errorCount"`
	RelevantDocsCount int `json:"relevantDocsCount"`
	TotalDocs         int `json:"totalDocs"`
	ChunksStored      int `json:"chunksStored"`
}
