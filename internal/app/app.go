// Package app wires the tablepatch harness into a running application.
//
// The harness stands in for the host server: New loads the host database and
// runtime config sections from their configured sources and registers them in
// a [Container] under the host's service names. Run then drives every
// modification through the host lifecycle (all PostDBLoad hooks, then all
// PostServerLoad hooks), writes the patched documents and an optional diff,
// and serves health and metrics endpoints until the context is cancelled.
// Shutdown tears everything down in order.
//
// For testing, inject sources and modifications via functional options
// (WithSources, WithMods, etc.). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/tablepatch/internal/catalog"
	"github.com/MrWong99/tablepatch/internal/config"
	"github.com/MrWong99/tablepatch/internal/health"
	"github.com/MrWong99/tablepatch/internal/hostcfg"
	"github.com/MrWong99/tablepatch/internal/hostlog"
	"github.com/MrWong99/tablepatch/internal/journal"
	"github.com/MrWong99/tablepatch/internal/mod"
	"github.com/MrWong99/tablepatch/internal/observe"
	"github.com/MrWong99/tablepatch/internal/patch"
	"github.com/MrWong99/tablepatch/internal/taxonomy"
	"github.com/MrWong99/tablepatch/pkg/host"
	"github.com/MrWong99/tablepatch/pkg/tables"
)

// Mod is a modification driven through both host lifecycle hooks.
type Mod interface {
	host.PostDBLoadMod
	host.PostServerLoadMod
}

// reporter is implemented by modifications whose PostDBLoad produces a
// patch report.
type reporter interface {
	LastReport() patch.Report
}

// CheckCatalog names the readiness check for loading the host state. The
// hook checks are named after the hooks.
const CheckCatalog = "catalog"

// App owns all subsystem lifetimes and drives the modification lifecycle.
type App struct {
	cfg     *config.Config
	metrics *observe.Metrics
	logger  *slog.Logger

	catalogSrc catalog.Source
	configsSrc catalog.Source

	// Host state, loaded in New and patched by Run.
	db        *tables.Tables
	original  *tables.Tables
	registry  *hostcfg.Registry
	container *Container
	mods      []Mod

	diffOut io.Writer

	catalogGate *health.Gate
	dbHookGate  *health.Gate
	serverGate  *health.Gate
	health      *health.Handler
	listener    net.Listener
	server      *http.Server
	serverErrCh chan error
	ranOnce     sync.Once
	closers     []func() error
	stopOnce    sync.Once
}

// Option is a functional option for [New].
type Option func(*App)

// WithSources overrides the catalog and runtime config sources. The caller
// keeps ownership: the app does not close injected sources. configs may be
// nil to reuse the catalog source.
func WithSources(catalogSrc, configs catalog.Source) Option {
	return func(a *App) {
		a.catalogSrc = catalogSrc
		a.configsSrc = configs
	}
}

// WithMods replaces the default modification. Mods run in the given order.
func WithMods(mods ...Mod) Option {
	return func(a *App) { a.mods = append(a.mods, mods...) }
}

// WithMetrics sets the metrics sink. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLogger sets the logger handed to modifications as the host logger.
// Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithDiffOutput sets where record diffs are printed when output.diff is
// enabled. Defaults to os.Stdout.
func WithDiffOutput(w io.Writer) Option {
	return func(a *App) { a.diffOut = w }
}

// New creates a new App by loading the host state described by cfg.
// Options override defaults for testing.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:         cfg,
		diffOut:     os.Stdout,
		catalogGate: health.NewGate(CheckCatalog),
		dbHookGate:  health.NewGate(mod.HookPostDBLoad),
		serverGate:  health.NewGate(mod.HookPostServerLoad),
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.health = health.New(a.catalogGate.Checker(), a.dbHookGate.Checker(), a.serverGate.Checker())

	// ── 1. Sources ───────────────────────────────────────────────────────────
	if err := a.openSources(ctx); err != nil {
		_ = a.closeAll()
		return nil, err
	}

	// ── 2. Host database and runtime config sections ────────────────────────
	if err := a.load(ctx); err != nil {
		a.catalogGate.Fail(err)
		_ = a.closeAll()
		return nil, err
	}
	a.catalogGate.Pass()

	// ── 3. Pristine copy for the diff ───────────────────────────────────────
	if cfg.Output.Diff {
		orig, err := catalog.Clone(a.db)
		if err != nil {
			_ = a.closeAll()
			return nil, fmt.Errorf("app: %w", err)
		}
		a.original = orig
	}

	// ── 4. Host container ───────────────────────────────────────────────────
	a.container = NewContainer()
	a.container.Register(host.DatabaseTables, a.db)
	a.container.Register(host.ItemClassifier, taxonomy.New(a.db.Templates.Items))
	a.container.Register(host.ConfigServer, a.registry)
	a.container.Register(host.LoggerService, hostlog.New(a.logger))

	// ── 5. Modifications ────────────────────────────────────────────────────
	if len(a.mods) == 0 {
		a.mods = []Mod{mod.New(mod.WithEdits(cfg.PatchEdits()...), mod.WithMetrics(a.metrics))}
	}

	// ── 6. HTTP listener ────────────────────────────────────────────────────
	if cfg.Server.ListenAddr != "" {
		ln, err := net.Listen("tcp", cfg.Server.ListenAddr)
		if err != nil {
			_ = a.closeAll()
			return nil, fmt.Errorf("app: listen on %q: %w", cfg.Server.ListenAddr, err)
		}
		a.listener = ln
		a.closers = append(a.closers, func() error {
			if a.server == nil {
				return ln.Close()
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.server.Shutdown(ctx)
		})
	}

	slog.Info("app initialised",
		"items", len(a.db.Templates.Items),
		"locations", len(a.db.Locations),
		"sections", a.registry.Names(),
		"mods", len(a.mods),
	)
	return a, nil
}

// openSources opens the configured sources unless they were injected.
func (a *App) openSources(ctx context.Context) error {
	if a.catalogSrc == nil {
		src, err := catalog.OpenMirrored(ctx, a.cfg.Catalog, a.cfg.Mirrors)
		if err != nil {
			return fmt.Errorf("app: open catalog source: %w", err)
		}
		a.catalogSrc = src
		a.closers = append(a.closers, src.Close)

		if a.cfg.ConfigsSource() != a.cfg.Catalog {
			cs, err := catalog.Open(ctx, a.cfg.ConfigsSource())
			if err != nil {
				return fmt.Errorf("app: open configs source: %w", err)
			}
			a.configsSrc = cs
			a.closers = append(a.closers, cs.Close)
		}
	}
	if a.configsSrc == nil {
		a.configsSrc = a.catalogSrc
	}
	return nil
}

// load fetches the host database and the runtime config sections concurrently.
func (a *App) load(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		db, err := catalog.Load(egCtx, a.catalogSrc)
		if err != nil {
			return fmt.Errorf("app: load catalog: %w", err)
		}
		a.db = db
		return nil
	})
	eg.Go(func() error {
		reg, err := hostcfg.Load(egCtx, a.configsSrc)
		if err != nil {
			return fmt.Errorf("app: load config sections: %w", err)
		}
		a.registry = reg
		return nil
	})
	return eg.Wait()
}

// Container returns the container handed to modifications.
func (a *App) Container() *Container { return a.container }

// Tables returns the host database. After Run it holds the patched state.
func (a *App) Tables() *tables.Tables { return a.db }

// Registry returns the runtime config sections.
func (a *App) Registry() *hostcfg.Registry { return a.registry }

// Addr returns the address the HTTP server listens on, or nil when no
// listen address is configured.
func (a *App) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Handler returns the HTTP handler serving /healthz, /readyz and /metrics.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observe.Middleware(a.metrics)(mux)
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run drives the modifications through the host lifecycle and writes the
// configured outputs. Without a listen address it returns once that is done.
// Otherwise it keeps serving health and metrics until ctx is cancelled and
// returns ctx.Err(). Run may only be called once.
func (a *App) Run(ctx context.Context) error {
	first := false
	a.ranOnce.Do(func() { first = true })
	if !first {
		return errors.New("app: Run called twice")
	}

	if a.listener != nil {
		a.serve()
	}

	// ── PostDBLoad: patch the database before it is used ─────────────────
	err := a.postDBLoad(ctx)
	a.journal(err)
	if err != nil {
		a.dbHookGate.Fail(err)
		return err
	}
	a.dbHookGate.Pass()

	if err := a.writeCatalog(ctx); err != nil {
		return err
	}

	// ── PostServerLoad: patch the live runtime config ────────────────────
	for _, m := range a.mods {
		if err := m.PostServerLoad(ctx, a.container); err != nil {
			a.serverGate.Fail(err)
			return err
		}
	}
	a.serverGate.Pass()

	if err := a.writeSections(ctx); err != nil {
		return err
	}

	if a.server == nil {
		slog.Info("app finished")
		return nil
	}

	slog.Info("app running", "addr", a.listener.Addr().String())
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-a.serverErrCh:
		return fmt.Errorf("app: http server: %w", err)
	}
}

func (a *App) postDBLoad(ctx context.Context) error {
	for _, m := range a.mods {
		if err := m.PostDBLoad(ctx, a.container); err != nil {
			return err
		}
	}
	return nil
}

// journal appends the outcome of the PostDBLoad phase to the run journal.
// Journal failures are logged, never fatal.
func (a *App) journal(runErr error) {
	if a.cfg.Output.Journal == "" {
		return
	}
	var report patch.Report
	for _, m := range a.mods {
		if r, ok := m.(reporter); ok {
			report = r.LastReport()
		}
	}
	entry := journal.NewEntry(string(a.cfg.Catalog.Driver.OrDefault()), report, runErr)
	if err := journal.NewFile(a.cfg.Output.Journal).Append(entry); err != nil {
		slog.Warn("failed to append run journal", "path", a.cfg.Output.Journal, "err", err)
	}
}

func (a *App) serve() {
	a.server = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.serverErrCh = make(chan error, 1)
	go func() {
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serverErrCh <- err
		}
	}()
}

// writeCatalog stores the patched database in the output directory and
// prints the record diff, as configured.
func (a *App) writeCatalog(ctx context.Context) error {
	if a.original != nil {
		diffs, err := catalog.Diff(a.original, a.db)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		if err := catalog.WriteDiff(a.diffOut, diffs); err != nil {
			return fmt.Errorf("app: write diff: %w", err)
		}
		slog.Info("catalog diff written", "records", len(diffs))
	}

	out, err := a.outputDir()
	if err != nil || out == nil {
		return err
	}
	if err := catalog.Write(ctx, out, a.db); err != nil {
		return fmt.Errorf("app: write catalog: %w", err)
	}
	slog.Info("patched catalog written", "dir", a.cfg.Output.Dir)
	return nil
}

// writeSections stores the patched runtime config sections next to the
// patched database.
func (a *App) writeSections(ctx context.Context) error {
	out, err := a.outputDir()
	if err != nil || out == nil {
		return err
	}
	if err := hostcfg.Write(ctx, out, a.registry); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

func (a *App) outputDir() (*catalog.DirSource, error) {
	if a.cfg.Output.Dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(a.cfg.Output.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("app: create output dir: %w", err)
	}
	out, err := catalog.NewDirSource(a.cfg.Output.Dir, "")
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return out, nil
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// closeAll releases whatever New opened before it failed.
func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
