package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/tablepatch/pkg/tables"
)

// Load fetches the host database documents from src concurrently and decodes
// them into a [tables.Tables]. Every document is required; the first failure
// cancels the remaining fetches and is returned.
func Load(ctx context.Context, src Source) (*tables.Tables, error) {
	t := &tables.Tables{
		Globals:   &tables.Globals{},
		Hideout:   &tables.Hideout{},
		Templates: &tables.Templates{},
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return decodeDocument(egCtx, src, DocGlobals, t.Globals) })
	eg.Go(func() error { return decodeDocument(egCtx, src, DocItems, &t.Templates.Items) })
	eg.Go(func() error { return decodeDocument(egCtx, src, DocHideoutAreas, &t.Hideout.Areas) })
	eg.Go(func() error { return decodeDocument(egCtx, src, DocLocations, &t.Locations) })
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("catalog loaded",
		"items", len(t.Templates.Items),
		"hideout_areas", len(t.Hideout.Areas),
		"locations", len(t.Locations),
	)
	return t, nil
}

// LoadDocument decodes the JSON document called name from src into v.
func LoadDocument(ctx context.Context, src Source, name string, v any) error {
	return decodeDocument(ctx, src, name, v)
}

func decodeDocument(ctx context.Context, src Source, name string, v any) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("catalog: read %q: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("catalog: decode %q: %w", name, err)
	}
	return nil
}

// Write encodes t and stores every document through w concurrently.
func Write(ctx context.Context, w Writer, t *tables.Tables) error {
	docs, err := encodeDocuments(t)
	if err != nil {
		return err
	}
	eg, egCtx := errgroup.WithContext(ctx)
	for name, data := range docs {
		eg.Go(func() error { return w.Put(egCtx, name, data) })
	}
	return eg.Wait()
}

func encodeDocuments(t *tables.Tables) (map[string][]byte, error) {
	parts := map[string]any{
		DocGlobals:      t.Globals,
		DocItems:        itemsOf(t),
		DocHideoutAreas: areasOf(t),
		DocLocations:    t.Locations,
	}
	out := make(map[string][]byte, len(parts))
	for name, v := range parts {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("catalog: encode %q: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// Clone returns a deep copy of t.
func Clone(t *tables.Tables) (*tables.Tables, error) {
	out, err := t.Clone()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return out, nil
}

func itemsOf(t *tables.Tables) map[string]*tables.Item {
	if t.Templates == nil {
		return nil
	}
	return t.Templates.Items
}

func areasOf(t *tables.Tables) []*tables.HideoutArea {
	if t.Hideout == nil {
		return nil
	}
	return t.Hideout.Areas
}
