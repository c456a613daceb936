// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the document store, the embedding and
// generation services, text extraction, and the read-through cache.
package driven
