// Package domain defines the core business entities for Recall.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An indexed document with checksum and access metadata
//   - Embedding: The provider-tagged vector owned by a document
//   - Chunk: A sub-span of a document used for long content
//   - SearchPattern: A recorded query outcome used by search memory
//   - RetrievalContext: The transient per-query bundle of retrieved documents
//   - Operation: The closed set of workspace operations
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
