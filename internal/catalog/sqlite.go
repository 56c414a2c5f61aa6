package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteSource reads documents from the catalog_documents table of a SQLite
// database file.
type SQLiteSource struct {
	db     *sql.DB
	prefix string
}

var (
	_ Source = (*SQLiteSource)(nil)
	_ Writer = (*SQLiteSource)(nil)
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS catalog_documents (
	name TEXT PRIMARY KEY,
	body BLOB NOT NULL
)`

// NewSQLiteSource opens (creating if needed) the SQLite database at dbPath
// and ensures the documents table exists.
func NewSQLiteSource(ctx context.Context, dbPath, prefix string) (*SQLiteSource, error) {
	if dbPath == "" {
		dbPath = "tablepatch.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("catalog: sqlite: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: sqlite: open: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: sqlite: create table: %w", err)
	}
	return &SQLiteSource{db: db, prefix: prefix}, nil
}

// Open implements [Source.Open].
func (s *SQLiteSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM catalog_documents WHERE name = ?`, path.Join(s.prefix, name),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: sqlite: select %q: %w", name, err)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Put implements [Writer.Put].
func (s *SQLiteSource) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_documents (name, body) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body`,
		path.Join(s.prefix, name), data,
	)
	if err != nil {
		return fmt.Errorf("catalog: sqlite: upsert %q: %w", name, err)
	}
	return nil
}

// Close implements [Source.Close].
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
