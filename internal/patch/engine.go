// Package patch implements the catalog patch engine: a fixed rule set of
// field overwrites applied once to the host database after it has loaded.
//
// The engine works in five steps:
//
//  1. Preflight: every record addressed by identifier must exist. A missing
//     record aborts with a [*MissingRecordError] before anything is written.
//     With extra edits, the whole run is then rehearsed on a copy so a bad
//     edit also fails before the host's tables change.
//  2. Direct-identifier edits: globals, the laboratory location and the named
//     containers are patched through RFC 6902 JSON Patch documents.
//  3. Hideout: every stage of every area gets [ConstructionEpsilon].
//  4. Category rules: items are classified once into a category index and
//     each rule walks its category's members.
//  5. Extra edits supplied with [WithEdits], in order. They run last and may
//     overwrite what a rule wrote.
//
// Rules never read a field another rule writes, so their relative order does
// not matter. All rules are idempotent except the money stack multiplier,
// which compounds on every run.
package patch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrWong99/tablepatch/internal/taxonomy"
	"github.com/MrWong99/tablepatch/pkg/host"
	"github.com/MrWong99/tablepatch/pkg/tables"
)

// ConstructionEpsilon is the construction time written to every hideout
// stage. The host treats zero as a special value that breaks area upgrades
// until the client restarts, so the smallest accepted non-zero value is used.
const ConstructionEpsilon = 0.001

// Global values written by the engine.
const (
	LongShotDistance = 50
	FleaMinLevel     = 5
	MoneyStackFactor = 10
)

// MissingRecordError reports a record addressed by identifier that is not
// present in the database. It means the host data no longer matches the rule
// set and the whole patch run is aborted.
type MissingRecordError struct {
	Table string
	ID    string
}

func (e *MissingRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("patch: missing %s table", e.Table)
	}
	return fmt.Sprintf("patch: missing %s record %q", e.Table, e.ID)
}

// Recorder receives the outcome of a run. It is implemented by the metrics
// layer; the engine works without one.
type Recorder interface {
	RecordRuleChanges(ctx context.Context, rule string, n int)
	RecordDirectEdits(ctx context.Context, n int)
}

// Option configures an [Engine].
type Option func(*Engine)

// WithEdits appends extra direct-identifier edits. They are rehearsed on a
// copy of the tables before the run and applied after the built-in rules.
func WithEdits(edits ...Edit) Option {
	return func(e *Engine) { e.edits = append(e.edits, edits...) }
}

// WithRecorder sets the sink that receives per-rule change counts.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.rec = r }
}

// Engine applies the rule set. The zero value is not usable; call [New].
type Engine struct {
	edits []Edit
	rec   Recorder
}

// New returns an Engine with the built-in rules and the given options.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Apply patches t in place using c to classify items.
//
// Apply leaves t untouched when it fails with a *MissingRecordError or when
// an extra edit cannot be applied: the edits are first run against a copy of
// t that already carries every built-in change, so an edit addressing a path
// a rule removes fails there. Errors after that point may leave t partially
// patched; the caller is expected to abort startup.
func (e *Engine) Apply(ctx context.Context, t *tables.Tables, c host.Classifier) (Report, error) {
	if err := e.preflight(t); err != nil {
		return Report{}, err
	}

	ix := taxonomy.BuildIndex(t.Templates.Items, c, ruleCategories()...)

	if len(e.edits) > 0 {
		work, err := t.Clone()
		if err != nil {
			return Report{}, fmt.Errorf("patch: dry run: %w", err)
		}
		if _, err := e.run(work, ix); err != nil {
			return Report{}, err
		}
	}

	r, err := e.run(t, ix)
	if err != nil {
		return r, err
	}

	e.record(ctx, r)
	slog.DebugContext(ctx, "catalog patched",
		"direct_edits", r.DirectEdits,
		"stages", r.Stages,
		"items_changed", r.ItemsChanged(),
	)
	return r, nil
}

// run applies the built-in changes and then the extra edits to t.
func (e *Engine) run(t *tables.Tables, ix taxonomy.Index) (Report, error) {
	r := newReport()

	n, err := patchGlobals(t.Globals)
	if err != nil {
		return r, err
	}
	r.DirectEdits += n

	lab, _ := t.Location(tables.Laboratory)
	n, err = clearAccessKeys(lab)
	if err != nil {
		return r, err
	}
	r.DirectEdits += n

	for _, id := range namedContainers {
		it, _ := t.Item(id)
		n, err := clearContainerFilters(it)
		if err != nil {
			return r, err
		}
		r.DirectEdits += n
	}

	r.Stages = speedUpHideout(t.Hideout)

	for _, rl := range rules {
		changed := 0
		for _, id := range ix.Items(rl.category) {
			it, ok := t.Item(id)
			if !ok {
				continue
			}
			if rl.apply(&it.Props) {
				changed++
			}
		}
		r.Rules[rl.name] = changed
	}

	for _, ed := range e.edits {
		if err := ed.apply(t); err != nil {
			return r, err
		}
		r.DirectEdits++
	}
	return r, nil
}

func (e *Engine) record(ctx context.Context, r Report) {
	if e.rec == nil {
		return
	}
	for _, name := range r.RuleNames() {
		e.rec.RecordRuleChanges(ctx, name, r.Rules[name])
	}
	e.rec.RecordDirectEdits(ctx, r.DirectEdits)
}

var namedContainers = []string{tables.ThiccItemCase, tables.ItemCase, tables.SICCPouch}

// preflight checks every record the run will address by identifier.
func (e *Engine) preflight(t *tables.Tables) error {
	if t == nil || t.Globals == nil {
		return &MissingRecordError{Table: TableGlobals}
	}
	if t.Templates == nil || t.Templates.Items == nil {
		return &MissingRecordError{Table: TableItems}
	}
	if t.Hideout == nil {
		return &MissingRecordError{Table: "hideout.areas"}
	}
	for i, a := range t.Hideout.Areas {
		if a == nil {
			return &MissingRecordError{Table: "hideout.areas", ID: fmt.Sprint(i)}
		}
	}
	if _, ok := t.Location(tables.Laboratory); !ok {
		return &MissingRecordError{Table: TableLocations, ID: tables.Laboratory}
	}
	for _, id := range namedContainers {
		if _, ok := t.Item(id); !ok {
			return &MissingRecordError{Table: TableItems, ID: id}
		}
	}
	for _, ed := range e.edits {
		if err := ed.check(t); err != nil {
			return err
		}
	}
	return nil
}

// speedUpHideout sets every stage's construction time and returns the number
// of stages visited.
func speedUpHideout(h *tables.Hideout) int {
	n := 0
	for _, a := range h.Areas {
		for _, s := range a.Stages {
			if s == nil {
				continue
			}
			s.ConstructionTime = ConstructionEpsilon
			n++
		}
	}
	return n
}
