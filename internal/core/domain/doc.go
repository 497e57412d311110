// Package domain defines the core business entities for noticesync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Item: One unit of content in a remote ordered collection
//   - ContentState: The delivered-marker state encoded in an item's text
//   - Classification: The bucket assignment of a region for one run
//   - DeletionPlan: Positions to delete, with shift compensation
//   - Settings: Validated runtime configuration
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
