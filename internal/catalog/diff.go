package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/MrWong99/tablepatch/pkg/tables"
)

// RecordDiff is the change to a single record between two catalog states.
type RecordDiff struct {
	// Table is "globals", "locations", "hideout" or "items".
	Table string
	// ID is the record key within Table. Empty for globals.
	ID string
	// Lines holds the changed lines prefixed with "- " or "+ ".
	Lines []string
}

// Diff compares before and after record by record and returns the records
// whose encoded form differs, ordered by table and ID. Records present on
// only one side are reported in full.
func Diff(before, after *tables.Tables) ([]RecordDiff, error) {
	var out []RecordDiff
	add := func(table, id string, a, b any) error {
		d, err := diffRecord(table, id, a, b)
		if err != nil {
			return err
		}
		if d != nil {
			out = append(out, *d)
		}
		return nil
	}

	if err := add("globals", "", before.Globals, after.Globals); err != nil {
		return nil, err
	}

	for _, id := range unionKeys(before.Locations, after.Locations) {
		if err := add("locations", id, before.Locations[id], after.Locations[id]); err != nil {
			return nil, err
		}
	}

	beforeAreas, afterAreas := areasByID(before), areasByID(after)
	for _, id := range unionKeys(beforeAreas, afterAreas) {
		if err := add("hideout", id, beforeAreas[id], afterAreas[id]); err != nil {
			return nil, err
		}
	}

	beforeItems, afterItems := itemsOf(before), itemsOf(after)
	for _, id := range unionKeys(beforeItems, afterItems) {
		if err := add("items", id, beforeItems[id], afterItems[id]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WriteDiff prints diffs in a compact unified-like format.
func WriteDiff(w io.Writer, diffs []RecordDiff) error {
	for _, d := range diffs {
		header := d.Table
		if d.ID != "" {
			header += "/" + d.ID
		}
		if _, err := fmt.Fprintf(w, "@@ %s @@\n", header); err != nil {
			return err
		}
		for _, l := range d.Lines {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func diffRecord(table, id string, a, b any) (*RecordDiff, error) {
	as, err := encodeRecord(a)
	if err != nil {
		return nil, fmt.Errorf("catalog: diff %s/%s: %w", table, id, err)
	}
	bs, err := encodeRecord(b)
	if err != nil {
		return nil, fmt.Errorf("catalog: diff %s/%s: %w", table, id, err)
	}
	if as == bs {
		return nil, nil
	}
	return &RecordDiff{Table: table, ID: id, Lines: lineDiff(as, bs)}, nil
}

func encodeRecord(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	s := string(data)
	if s == "null" {
		return "", nil
	}
	return s + "\n", nil
}

// lineDiff returns the inserted and deleted lines between a and b.
func lineDiff(a, b string) []string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			continue
		}
		for _, l := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+strings.TrimSpace(l))
		}
	}
	return out
}

func areasByID(t *tables.Tables) map[string]*tables.HideoutArea {
	areas := areasOf(t)
	out := make(map[string]*tables.HideoutArea, len(areas))
	for _, a := range areas {
		if a != nil {
			out[a.ID] = a
		}
	}
	return out
}

func unionKeys[V any](a, b map[string]V) []string {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(keys))
}
