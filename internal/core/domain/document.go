package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
)

// Document is a unit of indexed content.
// It is the canonical representation after ingestion.
type Document struct {
	// ID is the stable identifier derived from SourcePath.
	ID string

	// Content is the full text content.
	Content string

	// Title is the human-readable title.
	Title string

	// SourcePath is the workspace-relative or absolute path of the source file.
	SourcePath string

	// FileType is the file extension or declared type (e.g. "md", "txt").
	FileType string

	// Checksum is the content hash used to decide whether re-embedding is needed.
	Checksum string

	// Tags are labels attached to the document for filtering.
	Tags []string

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// ModifiedAt is the source modification time reported at ingestion.
	ModifiedAt time.Time

	// IndexedAt is when the document content and embedding were last written.
	IndexedAt time.Time

	// AccessCount is how many times the document was handed to a query.
	AccessCount int

	// LastAccessed is when the document was last handed to a query.
	LastAccessed time.Time
}

// Embedding is the vector owned by one document.
// Vectors from different providers are never compared to each other.
type Embedding struct {
	// DocumentID is the owning document.
	DocumentID string

	// Vector is the ordered sequence of floats.
	Vector []float32

	// ProviderName identifies the embedding variant that produced Vector.
	ProviderName string
}

// Dimension returns the vector length.
func (e Embedding) Dimension() int {
	return len(e.Vector)
}

// Chunk is a sub-span of a document's content.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the 0-based ordinal position within the document.
	Index int

	// Content is the text of this chunk.
	Content string

	// StartOffset is the byte offset of the chunk start in the parent content.
	StartOffset int

	// EndOffset is the exclusive byte offset of the chunk end.
	EndOffset int

	// Embedding is the optional vector for this chunk.
	Embedding []float32
}

// DocumentID derives the stable document identifier for a source path.
// Equivalent spellings of the same path map to the same ID.
func DocumentID(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	sum := sha256.Sum256([]byte(cleaned))
	return "doc_" + hex.EncodeToString(sum[:])[:16]
}

// Checksum returns the content hash of a document body.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// FileTypeOf returns the lower-cased extension of path without the dot.
func FileTypeOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// NormaliseTags lower-cases, trims and de-duplicates tags, preserving order.
func NormaliseTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ReindexCandidate reports whether a path needs (re-)indexing.
type ReindexCandidate struct {
	// Path is the file path that was checked.
	Path string

	// DocumentID is the ID derived from Path.
	DocumentID string

	// NeedsIndexing is true when no record exists or the checksums differ.
	NeedsIndexing bool

	// Missing is true when the file could not be found on disk.
	Missing bool

	// Checksum is the checksum of the current on-disk content.
	Checksum string
}

// StoreStats summarises the contents of a document store.
type StoreStats struct {
	Documents            int
	Chunks               int
	Embeddings           int
	Tags                 int
	SearchPatterns       int
	EmbeddingsByProvider map[string]int
}
