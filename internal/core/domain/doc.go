// Package domain defines the core entities of the catalog pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawMessage: One parsed block of the chat export
//   - Draft: A text block grouped with its photo continuations
//   - Product: A persisted catalog record
//   - Vocabulary: The storefront's departments and categories
//   - RunSummary: The counters reported at the end of a run
//   - Settings: The pipeline configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
