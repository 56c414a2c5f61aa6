package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/tablepatch/internal/catalog"
	"github.com/MrWong99/tablepatch/internal/config"
	"github.com/MrWong99/tablepatch/internal/patch"
)

const sampleYAML = `
server:
  listen_addr: ":9090"
  log_level: debug

catalog:
  driver: dir
  dir: ./database
  prefix: database

mirrors:
  - driver: s3
    bucket: spt-database
    region: eu-central-1

configs:
  driver: sqlite
  path: ./configs.db

output:
  dir: ./patched
  diff: true

edits:
  - table: items
    id: 5449016a4bdc2d6f028b456f
    path: /_props/StackMaxSize
    value: 1000000
  - table: globals
    path: /config/RagFair/minUserLevel
    value: 1
  - table: locations
    id: factory4_day
    path: /base/AccessKeys
    value: []
`

func TestLoadFromReader_Sample(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" || cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Catalog.Driver != catalog.DriverDir || cfg.Catalog.Dir != "./database" || cfg.Catalog.Prefix != "database" {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if len(cfg.Mirrors) != 1 || cfg.Mirrors[0].Driver != catalog.DriverS3 || cfg.Mirrors[0].Bucket != "spt-database" {
		t.Errorf("mirrors = %+v", cfg.Mirrors)
	}
	if got := cfg.ConfigsSource(); got.Driver != catalog.DriverSQLite || got.Path != "./configs.db" {
		t.Errorf("configs source = %+v", got)
	}
	if !cfg.Output.Diff || cfg.Output.Dir != "./patched" {
		t.Errorf("output = %+v", cfg.Output)
	}

	edits := cfg.PatchEdits()
	if len(edits) != 3 {
		t.Fatalf("edits = %d, want 3", len(edits))
	}
	if edits[0].Table != patch.TableItems || edits[0].Path != "/_props/StackMaxSize" || edits[0].Value != 1000000 {
		t.Errorf("edits[0] = %+v", edits[0])
	}
	if edits[1].Table != patch.TableGlobals || edits[1].ID != "" {
		t.Errorf("edits[1] = %+v", edits[1])
	}
	if v, ok := edits[2].Value.([]any); !ok || len(v) != 0 {
		t.Errorf("edits[2].Value = %#v, want empty list", edits[2].Value)
	}
}

func TestConfigsSource_FallsBackToCatalog(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader("catalog:\n  dir: /srv/db\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.ConfigsSource(); got != cfg.Catalog {
		t.Errorf("ConfigsSource = %+v, want catalog %+v", got, cfg.Catalog)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("catalog:\n  dir: x\n  directory: y\n"))
	if err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name:    "empty file",
			yaml:    "",
			wantErr: []string{"catalog.dir is required"},
		},
		{
			name:    "bad log level",
			yaml:    "server:\n  log_level: loud\ncatalog:\n  dir: x\n",
			wantErr: []string{`server.log_level "loud" is invalid`},
		},
		{
			name:    "bad driver",
			yaml:    "catalog:\n  driver: mongo\n",
			wantErr: []string{`catalog.driver "mongo" is invalid`},
		},
		{
			name:    "postgres without dsn",
			yaml:    "catalog:\n  driver: postgres\n",
			wantErr: []string{"catalog.dsn is required", config.EnvCatalogDSN},
		},
		{
			name:    "sqlite without path",
			yaml:    "catalog:\n  dir: x\nconfigs:\n  driver: sqlite\n",
			wantErr: []string{"configs.path is required"},
		},
		{
			name:    "s3 without bucket",
			yaml:    "catalog:\n  driver: s3\n  region: eu-central-1\n",
			wantErr: []string{"catalog.bucket is required"},
		},
		{
			name:    "mirror without dir",
			yaml:    "catalog:\n  dir: x\nmirrors:\n  - driver: s3\n    bucket: b\n  - driver: dir\n",
			wantErr: []string{"mirrors[1].dir is required"},
		},
		{
			name: "bad edits",
			yaml: `catalog:
  dir: x
edits:
  - table: quests
    id: q1
    path: /x
  - table: items
    path: _props/Weight
`,
			wantErr: []string{
				`edits[0].table "quests" is invalid`,
				"edits[1].id is required",
				`edits[1].path "_props/Weight" must be a JSON pointer`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err, want)
				}
			}
		})
	}
}

func TestLoad_EnvOverridesDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tablepatch.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  driver: postgres\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected missing DSN error without env override")
	}

	t.Setenv(config.EnvCatalogDSN, "postgres://patch@localhost/spt")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.DSN != "postgres://patch@localhost/spt" {
		t.Errorf("DSN = %q", cfg.Catalog.DSN)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config: open") {
		t.Fatalf("err = %v", err)
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()
	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if config.LogLevel("trace").IsValid() {
		t.Error("trace should be invalid")
	}
	if got := config.LogLevel("").SlogLevel().String(); got != "INFO" {
		t.Errorf("unset level = %s, want INFO", got)
	}
	if got := config.LogDebug.SlogLevel().String(); got != "DEBUG" {
		t.Errorf("debug level = %s", got)
	}
}
