// Package catalog provides a SQLite journal of uploaded documents. It backs
// the list and stats surfaces with upload timestamps and raw sizes; the
// vector index stays the source of truth for what is searchable.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marukodo/bunsho/internal/models"
)

// Entry is one catalog row.
type Entry struct {
	DocumentID      string
	Filename        string
	FileType        string
	StoredPath      string
	TotalChunks     int
	TotalCharacters int
	SizeBytes       int64
	UploadedAt      time.Time
}

// Catalog stores document upload records in SQLite.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Catalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		document_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		file_type TEXT NOT NULL,
		stored_path TEXT NOT NULL,
		total_chunks INTEGER NOT NULL,
		total_characters INTEGER NOT NULL,
		size_bytes INTEGER NOT NULL,
		uploaded_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Record inserts or replaces the row for a document identity. Re-uploads of
// the same identity refresh the timestamp rather than adding a row.
func (c *Catalog) Record(ctx context.Context, e *Entry) error {
	if e.UploadedAt.IsZero() {
		e.UploadedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents
		 (document_id, filename, file_type, stored_path, total_chunks, total_characters, size_bytes, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.DocumentID, e.Filename, e.FileType, e.StoredPath, e.TotalChunks, e.TotalCharacters, e.SizeBytes, e.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("record document: %w", err)
	}
	return nil
}

// Get returns the row for a document identity.
func (c *Catalog) Get(ctx context.Context, documentID string) (*Entry, error) {
	var e Entry
	err := c.db.QueryRowContext(ctx,
		`SELECT document_id, filename, file_type, stored_path, total_chunks, total_characters, size_bytes, uploaded_at
		 FROM documents WHERE document_id = ?`, documentID,
	).Scan(&e.DocumentID, &e.Filename, &e.FileType, &e.StoredPath, &e.TotalChunks, &e.TotalCharacters, &e.SizeBytes, &e.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, documentID)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns all rows ordered by upload time, newest first.
func (c *Catalog) List(ctx context.Context) ([]*Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT document_id, filename, file_type, stored_path, total_chunks, total_characters, size_bytes, uploaded_at
		 FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.DocumentID, &e.Filename, &e.FileType, &e.StoredPath, &e.TotalChunks, &e.TotalCharacters, &e.SizeBytes, &e.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Remove deletes the row for a document identity. Removing an unknown
// identity is a no-op.
func (c *Catalog) Remove(ctx context.Context, documentID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, documentID)
	return err
}

// TotalSizeBytes returns the sum of recorded upload sizes.
func (c *Catalog) TotalSizeBytes(ctx context.Context) (int64, error) {
	var n sql.NullInt64
	if err := c.db.QueryRowContext(ctx, `SELECT SUM(size_bytes) FROM documents`).Scan(&n); err != nil {
		return 0, err
	}
	return n.Int64, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
