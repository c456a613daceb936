// Package services implements the core pipeline: semantic retrieval,
// chunk prioritization and context assembly, document ingestion with
// batched persistence, metrics extraction with currency normalization
// and ratio derivation, and the analyst-facing answer operations.
package services
