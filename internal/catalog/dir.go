package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

func (s *DirSource) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Join(s.prefix, name)))
}

// Open implements [Source.Open].
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", name, err)
	}
	return f, nil
}

// Put implements [Writer.Put]. Parent directories are created as needed.
func (s *DirSource) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("catalog: put %q: %w", name, err)
	}
	if err := os.WriteFile(p, data, 0o640); err != nil {
		return fmt.Errorf("catalog: put %q: %w", name, err)
	}
	return nil
}

// Close implements [Source.Close]. It is a no-op.
func (s *DirSource) Close() error { return nil }
