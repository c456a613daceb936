// Package sqlite provides SQLite-backed persistence for documents,
// chunks, and extracted metrics.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// document and metrics store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.nicmarket/data/nicmarket.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".nicmarket", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "nicmarket.db")

	// WAL mode so the API server can read while an ingestion writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// MetricsStore returns a MetricsStore interface backed by this store.
func (s *Store) MetricsStore() driven.MetricsStore {
	return &metricsStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

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
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
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
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document record.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, issuer_id, title, type, date, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			issuer_id = excluded.issuer_id,
			title = excluded.title,
			type = excluded.type,
			date = excluded.date,
			url = excluded.url
	`, doc.ID, doc.IssuerID, doc.Title, doc.Type.String(), doc.Date, doc.URL, doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks writes one batch of chunks inside a transaction. Batches
// over the write limit are rejected before touching the database.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) > driven.MaxChunkBatch {
		return fmt.Errorf("batch of %d chunks exceeds limit of %d", len(chunks), driven.MaxChunkBatch)
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, issuer_id, document_id, position, content, embedding, metadata, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			issuer_id = excluded.issuer_id,
			document_id = excluded.document_id,
			position = excluded.position,
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			indexed_at = excluded.indexed_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.IssuerID, chunk.DocumentID,
			chunk.Index, chunk.Text, embeddingBlob, string(metadataJSON), now); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListChunks returns chunks most-recently-indexed first, filtered by
// issuer when issuerID is non-empty.
func (s *documentStore) ListChunks(ctx context.Context, issuerID string, limit int) ([]domain.Chunk, error) {
	query := `
		SELECT id, issuer_id, document_id, position, content, embedding, metadata
		FROM chunks
	`
	args := []any{}
	if issuerID != "" {
		query += " WHERE issuer_id = ?"
		args = append(args, issuerID)
	}
	query += " ORDER BY indexed_at DESC, document_id, position"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// HasChunks reports whether any chunk exists for the scope.
func (s *documentStore) HasChunks(ctx context.Context, issuerID string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM chunks)"
	args := []any{}
	if issuerID != "" {
		query = "SELECT EXISTS(SELECT 1 FROM chunks WHERE issuer_id = ?)"
		args = append(args, issuerID)
	}

	var exists bool
	if err := s.store.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking chunks: %w", err)
	}
	return exists, nil
}

// DeleteDocumentChunks removes all chunks of a document.
func (s *documentStore) DeleteDocumentChunks(ctx context.Context, documentID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", documentID, err)
	}
	return nil
}

// scanChunk scans a chunk from the standard column set.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.IssuerID, &chunk.DocumentID, &chunk.Index,
		&chunk.Text, &embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// ==================== Metrics Store ====================

// metricsStore implements driven.MetricsStore.
type metricsStore struct {
	store *Store
}

var _ driven.MetricsStore = (*metricsStore)(nil)

// SaveMetrics stores or replaces an issuer's metrics record. The full
// record is kept as JSON; the schema only indexes the issuer id.
func (s *metricsStore) SaveMetrics(ctx context.Context, record *domain.IssuerMetrics) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO issuer_metrics (issuer_id, record, extracted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(issuer_id) DO UPDATE SET
			record = excluded.record,
			extracted_at = excluded.extracted_at
	`, record.IssuerID, string(recordJSON), record.ExtractedAt)

	if err != nil {
		return fmt.Errorf("saving metrics: %w", err)
	}
	return nil
}

// GetMetrics retrieves the current metrics record for an issuer.
func (s *metricsStore) GetMetrics(ctx context.Context, issuerID string) (*domain.IssuerMetrics, error) {
	var recordJSON string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT record FROM issuer_metrics WHERE issuer_id = ?
	`, issuerID).Scan(&recordJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying metrics: %w", err)
	}

	var record domain.IssuerMetrics
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("unmarshaling metrics: %w", err)
	}
	return &record, nil
}

// ==================== Helpers ====================

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
