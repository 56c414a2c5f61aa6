package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrWong99/tablepatch/internal/resilience"
)

// MirrorSource reads documents from a primary source and falls back to its
// mirrors in order. Each source sits behind its own circuit breaker, so a
// store that keeps faulting is skipped until its cooldown has passed. A
// missing document is not a fault: the next source is asked without tripping
// the breaker.
type MirrorSource struct {
	sources *resilience.Failover[Source]
}

var (
	_ Source = (*MirrorSource)(nil)
	_ Writer = (*MirrorSource)(nil)
)

// NewMirrorSource returns a [MirrorSource] over primary and mirrors.
func NewMirrorSource(primary Source, mirrors ...Source) *MirrorSource {
	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{IsFault: isFault})
	for i, m := range mirrors {
		f.Add(fmt.Sprintf("mirror-%d", i+1), m)
	}
	return &MirrorSource{sources: f}
}

// OpenMirrored opens the source described by primary and, when mirrors are
// given, wraps it together with them in a [MirrorSource]. Sources opened
// before a failure are closed again.
func OpenMirrored(ctx context.Context, primary SourceConfig, mirrors []SourceConfig) (Source, error) {
	p, err := Open(ctx, primary)
	if err != nil || len(mirrors) == 0 {
		return p, err
	}
	opened := make([]Source, 0, len(mirrors))
	for i, mc := range mirrors {
		m, err := Open(ctx, mc)
		if err != nil {
			for _, s := range append(opened, p) {
				_ = s.Close()
			}
			return nil, fmt.Errorf("catalog: mirror %d: %w", i+1, err)
		}
		opened = append(opened, m)
	}
	return NewMirrorSource(p, opened...), nil
}

func isFault(err error) bool {
	return resilience.DefaultIsFault(err) && !errors.Is(err, ErrDocumentNotFound)
}

// Open implements [Source.Open]. When no source has the document the error
// wraps [ErrDocumentNotFound].
func (m *MirrorSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := resilience.Do(m.sources, func(s Source) (io.ReadCloser, error) {
		return s.Open(ctx, name)
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", name, err)
	}
	return rc, nil
}

// Put implements [Writer.Put]. Writes go to the primary only.
func (m *MirrorSource) Put(ctx context.Context, name string, data []byte) error {
	w, ok := m.sources.Primary().(Writer)
	if !ok {
		return fmt.Errorf("catalog: primary source %T is read-only", m.sources.Primary())
	}
	return w.Put(ctx, name, data)
}

// Close implements [Source.Close]. Every source is closed.
func (m *MirrorSource) Close() error {
	var errs []error
	m.sources.Each(func(name string, s Source) {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	})
	return errors.Join(errs...)
}
