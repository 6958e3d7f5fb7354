// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document, chunk, embedding and tag persistence
//   - EmbeddingProvider: Converts text to vectors (a deterministic stub is always available)
//   - Chunker: Splits long documents into overlapping chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PatternStore: Search memory persistence. Without it, no query history is kept.
//   - Generator: Language generation. Without it, answers are the rendered context itself.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
