// Package sqlite provides the persistent document registry backed by a
// local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/casedex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.DocumentStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.casedex/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".casedex", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "casedex.db")

	// WAL mode for better concurrency between ingestion and queries.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
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
	}

	return nil
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	tags, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, format, tags, raw_byte_length, index_status, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			format = excluded.format,
			tags = excluded.tags,
			raw_byte_length = excluded.raw_byte_length,
			index_status = excluded.index_status,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.Filename, string(doc.Format), tags, doc.RawByteLength,
		string(doc.IndexStatus), doc.IngestedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document, replacing any previous set.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	docID := chunks[0].DocumentID
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", docID); err != nil {
		return fmt.Errorf("clearing previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, seq, content, page_index, char_start, char_end, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range chunks {
		tags, err := marshalTags(ch.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, ch.ID, ch.DocumentID, i, ch.Text,
			ch.PageIndex, ch.CharStart, ch.CharEnd, tags); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, format, tags, raw_byte_length, index_status, ingested_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, content, page_index, char_start, char_end, tags
		FROM chunks WHERE id = ?
	`, id)

	var ch domain.Chunk
	var tags string
	err := row.Scan(&ch.ID, &ch.DocumentID, &ch.Text, &ch.PageIndex, &ch.CharStart, &ch.CharEnd, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if ch.Tags, err = unmarshalTags(tags); err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetChunks retrieves all chunks for a document in ingestion order.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, page_index, char_start, char_end, tags
		FROM chunks WHERE document_id = ? ORDER BY seq
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var ch domain.Chunk
		var tags string
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Text, &ch.PageIndex,
			&ch.CharStart, &ch.CharEnd, &tags); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if ch.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}

// UpdateStatus updates a document's index status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.IndexStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET index_status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return requireRow(res)
}

// UpdateTags replaces a document's tags. Chunk tag snapshots are untouched.
func (s *Store) UpdateTags(ctx context.Context, id string, tags []string) error {
	encoded, err := marshalTags(tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET tags = ? WHERE id = ?", encoded, id)
	if err != nil {
		return fmt.Errorf("updating tags: %w", err)
	}
	return requireRow(res)
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

// ListDocuments returns all documents, most recently ingested first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, format, tags, raw_byte_length, index_status, ingested_at
		FROM documents ORDER BY ingested_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var format, status, tags, ingestedAt string

	err := row.Scan(&doc.ID, &doc.Filename, &format, &tags,
		&doc.RawByteLength, &status, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Format = domain.Format(format)
	doc.IndexStatus = domain.IndexStatus(status)
	if doc.Tags, err = unmarshalTags(tags); err != nil {
		return nil, err
	}
	if doc.IngestedAt, err = time.Parse(time.RFC3339Nano, ingestedAt); err != nil {
		return nil, fmt.Errorf("parsing ingested_at: %w", err)
	}
	return &doc, nil
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshalling tags: %w", err)
	}
	return string(encoded), nil
}

func unmarshalTags(encoded string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(encoded), &tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
