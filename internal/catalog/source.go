// Package catalog loads the host database from a document source and writes
// it back.
//
// The host database is a handful of JSON documents (globals, item templates,
// hideout areas, locations). A [Source] hands those documents out by name;
// implementations read them from a directory, a SQLite file, a PostgreSQL
// table or an S3 bucket. [Load] fetches all documents concurrently and decodes
// them into a [tables.Tables]; [Write] is the inverse for sources that also
// implement [Writer].
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Document names of the host database.
const (
	DocGlobals      = "globals.json"
	DocItems        = "templates/items.json"
	DocHideoutAreas = "hideout/areas.json"
	DocLocations    = "locations.json"
)

// ErrDocumentNotFound is returned by [Source.Open] when no document with the
// requested name exists.
var ErrDocumentNotFound = errors.New("catalog: document not found")

// Source hands out named JSON documents.
// Implementations must be safe for concurrent use.
type Source interface {
	// Open returns a reader for the document called name. The caller closes it.
	// Returns an error wrapping [ErrDocumentNotFound] if it does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Close releases the source's resources.
	Close() error
}

// Writer stores named JSON documents, replacing existing ones.
type Writer interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Driver identifies a [Source] implementation.
type Driver string

const (
	DriverDir      Driver = "dir"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// IsValid reports whether d is a recognised driver.
func (d Driver) IsValid() bool {
	switch d {
	case DriverDir, DriverSQLite, DriverPostgres, DriverS3:
		return true
	}
	return false
}

// OrDefault returns d, or [DriverDir] when d is empty.
func (d Driver) OrDefault() Driver {
	if d == "" {
		return DriverDir
	}
	return d
}

// SourceConfig selects and configures a [Source].
type SourceConfig struct {
	// Driver selects the backend. Defaults to "dir".
	Driver Driver `yaml:"driver"`

	// Dir is the root directory for the dir driver.
	Dir string `yaml:"dir"`

	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`

	// DSN is the connection string for the postgres driver.
	DSN string `yaml:"dsn"`

	// Bucket, Region, Endpoint and PathStyle configure the s3 driver.
	// Endpoint is only needed for S3-compatible stores such as MinIO.
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`

	// Prefix is prepended to every document name (all drivers).
	Prefix string `yaml:"prefix"`
}

// Open constructs the [Source] described by cfg.
func Open(ctx context.Context, cfg SourceConfig) (Source, error) {
	driver := cfg.Driver.OrDefault()
	switch driver {
	case DriverDir:
		return NewDirSource(cfg.Dir, cfg.Prefix)
	case DriverSQLite:
		return NewSQLiteSource(ctx, cfg.Path, cfg.Prefix)
	case DriverPostgres:
		return NewPostgresSource(ctx, cfg.DSN, cfg.Prefix)
	case DriverS3:
		return NewS3Source(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
			Prefix:    cfg.Prefix,
		})
	default:
		return nil, fmt.Errorf("catalog: unknown source driver %q", driver)
	}
}

// notFound wraps ErrDocumentNotFound with the document name.
func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
}

// DirSource reads documents from files below a root directory. Document names
// use forward slashes and map onto the local path separator.
type DirSource struct {
	root   string
	prefix string
}

var (
	_ Source = (*DirSource)(nil)
	_ Writer = (*DirSource)(nil)
)

// NewDirSource returns a [DirSource] rooted at root. The directory must exist.
func NewDirSource(root, prefix string) (*DirSource, error) {
	if root == "" {
		return nil, errors.New("catalog: dir source requires a directory")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: dir source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog: dir source: %q is not a directory", root)
	}
	return &DirSource{root: root, prefix: prefix}, nil
}
