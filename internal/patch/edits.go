package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/tidwall/gjson"

	"github.com/MrWong99/tablepatch/pkg/tables"
)

// Tables addressable by an [Edit].
const (
	TableItems     = "items"
	TableLocations = "locations"
	TableGlobals   = "globals"
)

// ErrPathNotFound is returned when an edit addresses a field the record does
// not have. JSON Patch replace never creates fields.
var ErrPathNotFound = errors.New("patch: path not found")

// Edit replaces one field of a record addressed by identifier. Path is an
// RFC 6901 JSON pointer into the record's JSON form, for example
// "/_props/Weight". ID is ignored for the globals table.
type Edit struct {
	Table string
	ID    string
	Path  string
	Value any
}

func (ed Edit) String() string {
	if ed.Table == TableGlobals {
		return ed.Table + ed.Path
	}
	return ed.Table + "/" + ed.ID + ed.Path
}

func (ed Edit) ops() []operation {
	return []operation{replace(ed.Path, ed.Value)}
}

// check verifies that the edit names a known table and an existing record.
// Whether its path resolves is only known once the built-ins have run.
func (ed Edit) check(t *tables.Tables) error {
	switch ed.Table {
	case TableItems:
		if _, ok := t.Item(ed.ID); !ok {
			return &MissingRecordError{Table: TableItems, ID: ed.ID}
		}
	case TableLocations:
		if _, ok := t.Location(ed.ID); !ok {
			return &MissingRecordError{Table: TableLocations, ID: ed.ID}
		}
	case TableGlobals:
	default:
		return fmt.Errorf("patch: edit %s: unknown table %q", ed, ed.Table)
	}
	return nil
}

func (ed Edit) apply(t *tables.Tables) error {
	var err error
	switch ed.Table {
	case TableItems:
		it, _ := t.Item(ed.ID)
		_, err = applyOps(it, ed.ops())
	case TableLocations:
		loc, _ := t.Location(ed.ID)
		_, err = applyOps(loc, ed.ops())
	case TableGlobals:
		_, err = applyOps(t.Globals, ed.ops())
	default:
		err = fmt.Errorf("unknown table %q", ed.Table)
	}
	if err != nil {
		return fmt.Errorf("patch: edit %s: %w", ed, err)
	}
	return nil
}

// operation is a single RFC 6902 operation.
type operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func replace(path string, value any) operation {
	return operation{Op: "replace", Path: path, Value: value}
}

func patchGlobals(g *tables.Globals) (int, error) {
	n, err := applyOps(g, []operation{
		replace("/config/UncheckOnShot", false),
		replace("/config/exp/kill/longShotDistance", LongShotDistance),
		replace("/config/RagFair/minUserLevel", FleaMinLevel),
		replace("/config/DiscardLimitsEnabled", false),
	})
	if err != nil {
		return 0, fmt.Errorf("patch: globals: %w", err)
	}
	return n, nil
}

func clearAccessKeys(loc *tables.Location) (int, error) {
	n, err := applyOps(loc, []operation{replace("/base/AccessKeys", []string{})})
	if err != nil {
		return 0, fmt.Errorf("patch: location %s: %w", loc.Base.ID, err)
	}
	return n, nil
}

// clearContainerFilters empties the filter list of every grid of it so the
// container accepts any item.
func clearContainerFilters(it *tables.Item) (int, error) {
	ops := make([]operation, 0, len(it.Props.Grids))
	for i := range it.Props.Grids {
		ops = append(ops, replace(fmt.Sprintf("/_props/Grids/%d/_props/filters", i), []tables.GridFilter{}))
	}
	n, err := applyOps(it, ops)
	if err != nil {
		return 0, fmt.Errorf("patch: container %s: %w", it.ID, err)
	}
	return n, nil
}

// applyOps patches *dst in place and returns the number of operations
// applied. On error *dst is unchanged.
func applyOps[T any](dst *T, ops []operation) (int, error) {
	if len(ops) == 0 {
		return 0, nil
	}
	v, err := patched(dst, ops)
	if err != nil {
		return 0, err
	}
	*dst = v
	return len(ops), nil
}

// patched returns a copy of *src with ops applied.
func patched[T any](src *T, ops []operation) (T, error) {
	var out T
	doc, err := json.Marshal(src)
	if err != nil {
		return out, fmt.Errorf("marshal record: %w", err)
	}
	for _, op := range ops {
		if !pointerExists(doc, op.Path) {
			return out, fmt.Errorf("%s: %w", op.Path, ErrPathNotFound)
		}
	}
	raw, err := json.Marshal(ops)
	if err != nil {
		return out, fmt.Errorf("marshal operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return out, fmt.Errorf("decode operations: %w", err)
	}
	res, err := p.Apply(doc)
	if err != nil {
		return out, fmt.Errorf("apply operations: %w", err)
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return out, fmt.Errorf("decode patched record: %w", err)
	}
	return out, nil
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// pointerExists reports whether the RFC 6901 pointer resolves in doc.
func pointerExists(doc []byte, pointer string) bool {
	if !strings.HasPrefix(pointer, "/") {
		return false
	}
	toks := strings.Split(pointer[1:], "/")
	for i, tok := range toks {
		toks[i] = gjson.Escape(pointerUnescaper.Replace(tok))
	}
	return gjson.GetBytes(doc, strings.Join(toks, ".")).Exists()
}
