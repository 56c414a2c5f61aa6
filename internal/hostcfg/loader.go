package hostcfg

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/tablepatch/internal/catalog"
)

// Load reads every [Known] section from src concurrently and registers it.
func Load(ctx context.Context, src catalog.Source) (*Registry, error) {
	reg := NewRegistry()
	loaded := make([]any, len(Known))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, def := range Known {
		eg.Go(func() error {
			v := def.New()
			if err := catalog.LoadDocument(egCtx, src, def.Document, v); err != nil {
				return fmt.Errorf("hostcfg: load section %q: %w", def.Name, err)
			}
			loaded[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, def := range Known {
		reg.Register(def.Name, loaded[i])
	}
	return reg, nil
}

// Write encodes every [Known] section registered in r and stores it through w
// under its document name. Sections that are not registered are skipped.
func Write(ctx context.Context, w catalog.Writer, r *Registry) error {
	for _, def := range Known {
		v, err := r.Section(def.Name)
		if err != nil {
			continue
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("hostcfg: encode section %q: %w", def.Name, err)
		}
		if err := w.Put(ctx, def.Document, data); err != nil {
			return fmt.Errorf("hostcfg: write section %q: %w", def.Name, err)
		}
	}
	return nil
}
