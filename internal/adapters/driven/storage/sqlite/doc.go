// Package sqlite provides the SQLite-backed document and pattern stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements the store interfaces
// through a single database connection:
//
//   - DocumentStore: documents, embeddings, chunks and tags
//   - PatternStore: search memory
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embeddings, chunks and tags reference their document with ON DELETE CASCADE.
//
// # Data Location
//
// The database is stored at <workspace>/.recall/index.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. After Close every call returns domain.ErrNotInitialized.
package sqlite
