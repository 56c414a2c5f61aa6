// Package mod is the server modification itself. It implements both host
// lifecycle hooks, resolves the collaborators each hook needs from the
// container once, and hands them to the catalog patch engine and the startup
// config patcher.
package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/MrWong99/tablepatch/internal/observe"
	"github.com/MrWong99/tablepatch/internal/patch"
	"github.com/MrWong99/tablepatch/internal/startup"
	"github.com/MrWong99/tablepatch/pkg/host"
	"github.com/MrWong99/tablepatch/pkg/tables"
)

// Hook names used in spans, metrics and readiness checks.
const (
	HookPostDBLoad     = "post_db_load"
	HookPostServerLoad = "post_server_load"
)

var (
	_ host.PostDBLoadMod     = (*Mod)(nil)
	_ host.PostServerLoadMod = (*Mod)(nil)
)

// Option configures a [Mod].
type Option func(*Mod)

// WithEdits adds direct-identifier edits applied after the built-in rules.
func WithEdits(edits ...patch.Edit) Option {
	return func(m *Mod) { m.edits = append(m.edits, edits...) }
}

// WithMetrics sets the metrics sink. Defaults to [observe.DefaultMetrics].
func WithMetrics(met *observe.Metrics) Option {
	return func(m *Mod) { m.metrics = met }
}

// Mod patches the host database and runtime config.
type Mod struct {
	edits   []patch.Edit
	metrics *observe.Metrics

	// last is the report of the most recent PostDBLoad run.
	last patch.Report
}

// New returns a Mod with the given options.
func New(opts ...Option) *Mod {
	m := &Mod{}
	for _, o := range opts {
		o(m)
	}
	if m.metrics == nil {
		m.metrics = observe.DefaultMetrics()
	}
	return m
}

// PostDBLoad runs the catalog patch engine against the loaded database.
func (m *Mod) PostDBLoad(ctx context.Context, c host.Container) error {
	return m.hook(ctx, HookPostDBLoad, func(ctx context.Context) error {
		db, err := host.Resolve[*tables.Tables](c, host.DatabaseTables)
		if err != nil {
			return err
		}
		classifier, err := host.Resolve[host.Classifier](c, host.ItemClassifier)
		if err != nil {
			return err
		}
		engine := patch.New(patch.WithEdits(m.edits...), patch.WithRecorder(m.metrics))
		report, err := engine.Apply(ctx, db, classifier)
		if err != nil {
			return err
		}
		m.last = report
		observe.Logger(ctx).Info("catalog patched",
			"items_changed", report.ItemsChanged(),
			"direct_edits", report.DirectEdits,
			"hideout_stages", report.Stages,
		)
		return nil
	})
}

// PostServerLoad runs the startup config patcher against the live config.
func (m *Mod) PostServerLoad(ctx context.Context, c host.Container) error {
	return m.hook(ctx, HookPostServerLoad, func(context.Context) error {
		registry, err := host.Resolve[host.ConfigRegistry](c, host.ConfigServer)
		if err != nil {
			return err
		}
		logger, err := host.Resolve[host.Logger](c, host.LoggerService)
		if err != nil {
			return err
		}
		return startup.Apply(registry, logger)
	})
}

// LastReport returns the report of the most recent successful PostDBLoad.
func (m *Mod) LastReport() patch.Report {
	return m.last
}

func (m *Mod) hook(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := observe.Traced(ctx, "mod."+name, fn)
	m.metrics.RecordHook(ctx, name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("mod: %s: %w", name, err)
	}
	return nil
}
