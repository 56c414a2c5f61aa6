package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/tablepatch/internal/catalog"
	"github.com/MrWong99/tablepatch/internal/patch"
)

// Environment variables overriding connection strings, so secrets can stay
// out of the YAML file.
const (
	EnvCatalogDSN = "TABLEPATCH_CATALOG_DSN"
	EnvConfigsDSN = "TABLEPATCH_CONFIGS_DSN"
)

var editTables = []string{patch.TableItems, patch.TableLocations, patch.TableGlobals}

// Load reads the YAML configuration file at path, applies environment
// overrides and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Environment overrides are not applied.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides DSNs from [EnvCatalogDSN] and [EnvConfigsDSN] when set.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvCatalogDSN); v != "" {
		cfg.Catalog.DSN = v
	}
	if v := os.Getenv(EnvConfigsDSN); v != "" {
		cfg.Configs.DSN = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	errs = append(errs, validateSource("catalog", cfg.Catalog, true)...)
	for i, m := range cfg.Mirrors {
		errs = append(errs, validateSource(fmt.Sprintf("mirrors[%d]", i), m, true)...)
	}
	if cfg.Configs != (catalog.SourceConfig{}) {
		errs = append(errs, validateSource("configs", cfg.Configs, false)...)
	}

	if cfg.Output.Dir != "" && cfg.Catalog.Driver.OrDefault() == catalog.DriverDir && sameDir(cfg.Output.Dir, cfg.Catalog.Dir) {
		slog.Warn("output.dir equals catalog.dir; the source documents will be overwritten", "dir", cfg.Output.Dir)
	}

	for i, ed := range cfg.Edits {
		prefix := fmt.Sprintf("edits[%d]", i)
		if !slices.Contains(editTables, ed.Table) {
			errs = append(errs, fmt.Errorf("%s.table %q is invalid; valid values: %s", prefix, ed.Table, strings.Join(editTables, ", ")))
		}
		if ed.Table != patch.TableGlobals && ed.Table != "" && ed.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required for table %q", prefix, ed.Table))
		}
		if !strings.HasPrefix(ed.Path, "/") {
			errs = append(errs, fmt.Errorf("%s.path %q must be a JSON pointer starting with /", prefix, ed.Path))
		}
		if ed.Table == patch.TableGlobals && ed.ID != "" {
			slog.Warn("edit id is ignored for the globals table", "edit", prefix, "id", ed.ID)
		}
	}

	return errors.Join(errs...)
}

func validateSource(name string, sc catalog.SourceConfig, required bool) []error {
	var errs []error
	d := sc.Driver.OrDefault()
	if !d.IsValid() {
		return []error{fmt.Errorf("%s.driver %q is invalid; valid values: dir, sqlite, postgres, s3", name, sc.Driver)}
	}
	switch d {
	case catalog.DriverDir:
		if sc.Dir == "" && required {
			errs = append(errs, fmt.Errorf("%s.dir is required for the dir driver", name))
		}
	case catalog.DriverSQLite:
		if sc.Path == "" {
			errs = append(errs, fmt.Errorf("%s.path is required for the sqlite driver", name))
		}
	case catalog.DriverPostgres:
		if sc.DSN == "" {
			errs = append(errs, fmt.Errorf("%s.dsn is required for the postgres driver (or set %s)", name, envFor(name)))
		}
	case catalog.DriverS3:
		if sc.Bucket == "" {
			errs = append(errs, fmt.Errorf("%s.bucket is required for the s3 driver", name))
		}
	}
	return errs
}

func envFor(section string) string {
	if section == "configs" {
		return EnvConfigsDSN
	}
	return EnvCatalogDSN
}

func sameDir(a, b string) bool {
	return a != "" && b != "" && strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// PatchEdits converts the configured edits for the patch engine.
func (c *Config) PatchEdits() []patch.Edit {
	out := make([]patch.Edit, 0, len(c.Edits))
	for _, ed := range c.Edits {
		out = append(out, patch.Edit{Table: ed.Table, ID: ed.ID, Path: ed.Path, Value: ed.Value})
	}
	return out
}

// SlogLevel maps the configured level onto [slog.Level]. Unset means info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}
