package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid caller input.
	// Surfaced before any I/O occurs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoEvidence indicates the scoped issuer or universe has no
	// indexed chunks yet. Recoverable once ingestion runs, so it maps
	// to a temporary-unavailability condition rather than a failure.
	ErrNoEvidence = errors.New("no indexed documents for scope")

	// ErrUpstream indicates a store or external service call failed.
	ErrUpstream = errors.New("upstream failure")

	// ErrMalformedAIOutput indicates the generation service's response
	// failed schema validation. Never coerced into a fabricated record.
	ErrMalformedAIOutput = errors.New("malformed generation output")
)

// SchemaErrorKind names the way a generation response failed validation.
type SchemaErrorKind string

// Schema failure kinds.
const (
	SchemaMalformedJSON SchemaErrorKind = "MalformedJSON"
	SchemaMissingField  SchemaErrorKind = "MissingField"
	SchemaOutOfRange    SchemaErrorKind = "OutOfRangeValue"
)

// SchemaError describes a specific generation-output validation failure.
// It unwraps to ErrMalformedAIOutput so callers can match the taxonomy
// without inspecting the kind.
type SchemaError struct {
	Kind   SchemaErrorKind
	Field  string
	Detail string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap ties schema errors into the domain taxonomy.
func (e *SchemaError) Unwrap() error {
	return ErrMalformedAIOutput
}
