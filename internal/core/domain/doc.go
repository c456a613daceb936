// Package domain contains the core business types for the issuer
// disclosure pipeline: documents, chunks, extracted metrics, and the
// policy tables that drive ranking and currency normalization.
package domain
