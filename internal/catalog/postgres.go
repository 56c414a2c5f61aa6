package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads documents from the catalog_documents table of a
// PostgreSQL database. The table is created on first use.
type PostgresSource struct {
	pool   *pgxpool.Pool
	prefix string
}

var (
	_ Source = (*PostgresSource)(nil)
	_ Writer = (*PostgresSource)(nil)
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS catalog_documents (
	name TEXT PRIMARY KEY,
	body JSONB NOT NULL
)`

// NewPostgresSource connects to dsn, verifies the connection and ensures the
// documents table exists.
func NewPostgresSource(ctx context.Context, dsn, prefix string) (*PostgresSource, error) {
	if dsn == "" {
		return nil, errors.New("catalog: postgres source requires a dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: postgres: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("catalog: postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: postgres: migrate: %w", err)
	}
	return &PostgresSource{pool: pool, prefix: prefix}, nil
}

// Open implements [Source.Open].
func (s *PostgresSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body::text FROM catalog_documents WHERE name = $1`, path.Join(s.prefix, name),
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: postgres: select %q: %w", name, err)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Put implements [Writer.Put].
func (s *PostgresSource) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO catalog_documents (name, body) VALUES ($1, $2::jsonb)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body`,
		path.Join(s.prefix, name), string(data),
	)
	if err != nil {
		return fmt.Errorf("catalog: postgres: upsert %q: %w", name, err)
	}
	return nil
}

// Close implements [Source.Close].
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
