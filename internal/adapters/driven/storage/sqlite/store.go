package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/recall/internal/adapters/driven/storage"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/scoring"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "index.db"

// Store is a unified SQLite-based storage that provides access to
// the document and pattern store interfaces through wrapper types.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ./.recall.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = ".recall"
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection. Later calls on any wrapper
// return domain.ErrNotInitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// PatternStore returns a PatternStore interface backed by this store.
func (s *Store) PatternStore() driven.PatternStore {
	return &patternStore{store: s}
}

// with runs fn while holding the store open.
func (s *Store) with(fn func(db *sql.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return domain.ErrNotInitialized
	}
	return fn(s.db)
}

// tx runs fn in a transaction, committing when it returns nil.
func (s *Store) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.with(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("applied migration %s", name)
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `d.id, d.source_path, d.title, d.content, d.file_type, d.checksum,
	d.created_at, d.modified_at, d.indexed_at, d.access_count, d.last_accessed`

// Upsert inserts or replaces a document, its embedding, chunks and tags
// in a single transaction.
func (s *documentStore) Upsert(ctx context.Context, in driven.UpsertInput) error {
	doc := in.Document
	if doc.SourcePath == "" {
		return fmt.Errorf("%w: document source path is required", domain.ErrInvalidInput)
	}
	if doc.ID == "" {
		doc.ID = domain.DocumentID(doc.SourcePath)
	}
	if in.Embedding != nil && (in.Embedding.ProviderName == "" || len(in.Embedding.Vector) == 0) {
		return fmt.Errorf("%w: embedding requires a provider and a vector", domain.ErrInvalidInput)
	}

	now := s.store.now()
	doc.Checksum = domain.Checksum(doc.Content)
	if doc.ModifiedAt.IsZero() {
		doc.ModifiedAt = now
	}

	return s.store.tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, source_path, title, content, file_type, checksum,
				created_at, modified_at, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				source_path = excluded.source_path,
				title = excluded.title,
				content = excluded.content,
				file_type = excluded.file_type,
				checksum = excluded.checksum,
				modified_at = excluded.modified_at,
				indexed_at = excluded.indexed_at
		`, doc.ID, doc.SourcePath, doc.Title, doc.Content, doc.FileType, doc.Checksum,
			toUnix(now), toUnix(doc.ModifiedAt), toUnix(now))
		if err != nil {
			return fmt.Errorf("saving document: %w", err)
		}

		if err := saveEmbedding(ctx, tx, doc, in.Embedding); err != nil {
			return err
		}
		if err := saveChunks(ctx, tx, doc.ID, in.Chunks); err != nil {
			return err
		}
		if in.ReplaceTags {
			if err := saveTags(ctx, tx, doc.ID, doc.Tags); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveEmbedding(ctx context.Context, tx *sql.Tx, doc domain.Document, emb *domain.Embedding) error {
	if emb == nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE document_id = ?", doc.ID); err != nil {
			return fmt.Errorf("deleting embedding: %w", err)
		}
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO embeddings (document_id, provider, dimension, vector, checksum)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			provider = excluded.provider,
			dimension = excluded.dimension,
			vector = excluded.vector,
			checksum = excluded.checksum
	`, doc.ID, emb.ProviderName, len(emb.Vector), float32SliceToBytes(emb.Vector), doc.Checksum)
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

func saveChunks(ctx context.Context, tx *sql.Tx, documentID string, chunks []domain.Chunk) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, chunk_index, content, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, documentID, chunk.Index, chunk.Content,
			chunk.StartOffset, chunk.EndOffset, float32SliceToBytes(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}
	return nil
}

func saveTags(ctx context.Context, tx *sql.Tx, documentID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}
	for _, tag := range domain.NormaliseTags(tags) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (document_id, tag) VALUES (?, ?)", documentID, tag); err != nil {
			return fmt.Errorf("saving tag: %w", err)
		}
	}
	return nil
}

// GetReindexCandidates compares on-disk checksums with stored checksums.
func (s *documentStore) GetReindexCandidates(ctx context.Context, paths []string) ([]domain.ReindexCandidate, error) {
	return storage.ReindexCandidates(ctx, paths, func(ctx context.Context, id string) (string, bool, error) {
		var checksum string
		err := s.store.with(func(db *sql.DB) error {
			return db.QueryRowContext(ctx, "SELECT checksum FROM documents WHERE id = ?", id).Scan(&checksum)
		})
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", false, nil
		case err != nil:
			return "", false, err
		}
		return checksum, true, nil
	})
}

// Search ranks documents embedded by providerName by cosine similarity.
// A document scores the best of its own vector and its chunk vectors.
func (s *documentStore) Search(
	ctx context.Context, query []float32, providerName string, limit int,
) ([]domain.ScoredDocument, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	var results []domain.ScoredDocument
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT `+documentColumns+`, e.vector
			FROM embeddings e JOIN documents d ON d.id = e.document_id
			WHERE e.provider = ? AND e.checksum = d.checksum
			ORDER BY d.source_path
		`, providerName)
		if err != nil {
			return fmt.Errorf("querying embeddings: %w", err)
		}
		defer rows.Close()

		index := make(map[string]int)
		for rows.Next() {
			var blob []byte
			doc, err := scanDocument(rows, &blob)
			if err != nil {
				return err
			}

			score, err := scoring.Cosine(query, bytesToFloat32Slice(blob))
			if err != nil {
				return fmt.Errorf("scoring %s: %w", doc.SourcePath, err)
			}
			index[doc.ID] = len(results)
			results = append(results, domain.ScoredDocument{Document: *doc, Score: score, SemanticScore: score})
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating embeddings: %w", err)
		}

		return s.scoreChunks(ctx, db, query, providerName, index, results)
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, results); err != nil {
		return nil, err
	}
	return storage.Rank(results, limit), nil
}

// scoreChunks raises a document's score to its best chunk match and
// records that chunk as a highlight.
func (s *documentStore) scoreChunks(
	ctx context.Context, db *sql.DB, query []float32, providerName string,
	index map[string]int, results []domain.ScoredDocument,
) error {
	rows, err := db.QueryContext(ctx, `
		SELECT c.document_id, c.content, c.embedding
		FROM chunks c JOIN embeddings e ON e.document_id = c.document_id
		WHERE e.provider = ? AND c.embedding IS NOT NULL
	`, providerName)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, content string
		var blob []byte
		if err := rows.Scan(&id, &content, &blob); err != nil {
			return fmt.Errorf("scanning chunk: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		score, err := scoring.Cosine(query, bytesToFloat32Slice(blob))
		if err != nil {
			return fmt.Errorf("scoring chunk of %s: %w", results[i].Document.SourcePath, err)
		}
		if score <= results[i].Score {
			continue
		}
		results[i].Score = score
		results[i].SemanticScore = score
		results[i].Highlights = []string{scoring.Truncate(content, scoring.HighlightLength)}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating chunks: %w", err)
	}
	return nil
}

// KeywordSearch ranks documents containing any keyword by normalised frequency.
// Matching happens in Go because SQLite's lower() only folds ASCII.
func (s *documentStore) KeywordSearch(ctx context.Context, keywords []string, limit int) ([]domain.ScoredDocument, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	var results []domain.ScoredDocument
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT `+documentColumns+`
			FROM documents d
			ORDER BY d.source_path
		`)
		if err != nil {
			return fmt.Errorf("querying documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			doc, err := scanDocument(rows)
			if err != nil {
				return err
			}
			score := scoring.KeywordScore(doc.Content, keywords)
			if score <= 0 {
				continue
			}
			results = append(results, domain.ScoredDocument{
				Document:     *doc,
				Score:        score,
				KeywordScore: score,
				Highlights:   scoring.Highlights(doc.Content, keywords, 3),
			})
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating documents: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, results); err != nil {
		return nil, err
	}
	return storage.Rank(results, limit), nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var doc *domain.Document
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents d WHERE d.id = ?", id)
		if err != nil {
			return fmt.Errorf("querying document: %w", err)
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return fmt.Errorf("querying document: %w", err)
			}
			return domain.ErrNotFound
		}
		doc, err = scanDocument(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	tags, err := s.tagsFor(ctx, []string{doc.ID})
	if err != nil {
		return nil, err
	}
	doc.Tags = tags[doc.ID]
	return doc, nil
}

// GetEmbedding retrieves the stored embedding of a document.
func (s *documentStore) GetEmbedding(ctx context.Context, documentID string) (*domain.Embedding, error) {
	emb := &domain.Embedding{DocumentID: documentID}
	err := s.store.with(func(db *sql.DB) error {
		var blob []byte
		err := db.QueryRowContext(ctx, "SELECT provider, vector FROM embeddings WHERE document_id = ?", documentID).
			Scan(&emb.ProviderName, &blob)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("querying embedding: %w", err)
		}
		emb.Vector = bytesToFloat32Slice(blob)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return emb, nil
}

// GetChunks retrieves all chunks for a document.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT document_id, chunk_index, content, start_offset, end_offset, embedding
			FROM chunks WHERE document_id = ?
			ORDER BY chunk_index
		`, documentID)
		if err != nil {
			return fmt.Errorf("querying chunks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var chunk domain.Chunk
			var blob []byte
			if err := rows.Scan(&chunk.DocumentID, &chunk.Index, &chunk.Content,
				&chunk.StartOffset, &chunk.EndOffset, &blob); err != nil {
				return fmt.Errorf("scanning chunk: %w", err)
			}
			chunk.Embedding = bytesToFloat32Slice(blob)
			chunks = append(chunks, chunk)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating chunks: %w", err)
		}
		return nil
	})
	return chunks, err
}

// List returns all documents ordered by source path.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	return s.listWhere(ctx, "", nil)
}

// ListByTag returns documents carrying tag.
func (s *documentStore) ListByTag(ctx context.Context, tag string) ([]domain.Document, error) {
	return s.listWhere(ctx,
		"WHERE d.id IN (SELECT document_id FROM tags WHERE tag = ?)",
		[]any{strings.ToLower(strings.TrimSpace(tag))})
}

func (s *documentStore) listWhere(ctx context.Context, where string, args []any) ([]domain.Document, error) {
	var docs []domain.Document //nolint:prealloc // size unknown from query
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			"SELECT "+documentColumns+" FROM documents d "+where+" ORDER BY d.source_path", args...)
		if err != nil {
			return fmt.Errorf("querying documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			doc, err := scanDocument(rows)
			if err != nil {
				return err
			}
			docs = append(docs, *doc)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating documents: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	tags, err := s.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Tags = tags[docs[i].ID]
	}
	return docs, nil
}

// ListStale returns IDs of documents lacking a current embedding from providerName.
func (s *documentStore) ListStale(ctx context.Context, providerName string) ([]string, error) {
	var ids []string
	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT d.id FROM documents d
			LEFT JOIN embeddings e
				ON e.document_id = d.id AND e.provider = ? AND e.checksum = d.checksum
			WHERE e.document_id IS NULL
			ORDER BY d.source_path
		`, providerName)
		if err != nil {
			return fmt.Errorf("querying stale documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scanning document id: %w", err)
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

// RecordAccess increments access counters of the given documents.
func (s *documentStore) RecordAccess(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return s.store.tx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE documents SET access_count = access_count + 1, last_accessed = ?
				WHERE id = ?
			`, toUnix(at), id); err != nil {
				return fmt.Errorf("recording access: %w", err)
			}
		}
		return nil
	})
}

// Remove deletes a document; embeddings, chunks and tags cascade.
func (s *documentStore) Remove(ctx context.Context, id string) error {
	return s.store.with(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Stats summarises the store contents.
func (s *documentStore) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{EmbeddingsByProvider: make(map[string]int)}
	err := s.store.with(func(db *sql.DB) error {
		counts := []struct {
			query string
			dest  *int
		}{
			{"SELECT COUNT(*) FROM documents", &stats.Documents},
			{"SELECT COUNT(*) FROM chunks", &stats.Chunks},
			{"SELECT COUNT(*) FROM embeddings", &stats.Embeddings},
			{"SELECT COUNT(DISTINCT tag) FROM tags", &stats.Tags},
			{"SELECT COUNT(*) FROM search_patterns", &stats.SearchPatterns},
		}
		for _, c := range counts {
			if err := db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
				return fmt.Errorf("counting: %w", err)
			}
		}

		rows, err := db.QueryContext(ctx, "SELECT provider, COUNT(*) FROM embeddings GROUP BY provider")
		if err != nil {
			return fmt.Errorf("counting embeddings: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var provider string
			var n int
			if err := rows.Scan(&provider, &n); err != nil {
				return fmt.Errorf("scanning provider count: %w", err)
			}
			stats.EmbeddingsByProvider[provider] = n
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// attachTags loads tags for each result document.
func (s *documentStore) attachTags(ctx context.Context, results []domain.ScoredDocument) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].Document.ID
	}
	tags, err := s.tagsFor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range results {
		results[i].Document.Tags = tags[results[i].Document.ID]
	}
	return nil
}

// tagsFor returns the tags of the given documents keyed by document ID.
func (s *documentStore) tagsFor(ctx context.Context, ids []string) (map[string][]string, error) {
	tags := make(map[string][]string)
	if len(ids) == 0 {
		return tags, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	err := s.store.with(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			"SELECT document_id, tag FROM tags WHERE document_id IN ("+placeholders+") ORDER BY tag", args...)
		if err != nil {
			return fmt.Errorf("querying tags: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id, tag string
			if err := rows.Scan(&id, &tag); err != nil {
				return fmt.Errorf("scanning tag: %w", err)
			}
			tags[id] = append(tags[id], tag)
		}
		return rows.Err()
	})
	return tags, err
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// toUnix stores times as Unix nanoseconds; the zero time is stored as 0.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// scanDocument scans documentColumns plus any extra destinations.
func scanDocument(rows *sql.Rows, extra ...any) (*domain.Document, error) {
	var doc domain.Document
	var created, modified, indexed, accessed int64

	dest := []any{&doc.ID, &doc.SourcePath, &doc.Title, &doc.Content, &doc.FileType, &doc.Checksum,
		&created, &modified, &indexed, &doc.AccessCount, &accessed}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.CreatedAt = fromUnix(created)
	doc.ModifiedAt = fromUnix(modified)
	doc.IndexedAt = fromUnix(indexed)
	doc.LastAccessed = fromUnix(accessed)
	return &doc, nil
}
