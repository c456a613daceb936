// Package driving provides interfaces for the application's entry
// points (primary/inbound ports), consumed by the CLI and HTTP
// adapters.
package driving
