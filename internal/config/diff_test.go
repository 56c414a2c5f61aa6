package config_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/tablepatch/internal/catalog"
	"github.com/MrWong99/tablepatch/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{ListenAddr: ":9090", LogLevel: config.LogInfo},
		Catalog: catalog.SourceConfig{Dir: "db"},
		Edits:   []config.EditConfig{{Table: "globals", Path: "/config/UncheckOnShot", Value: true}},
	}
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	d := config.Diff(baseConfig(), baseConfig())
	if d.Changed() {
		t.Errorf("identical configs reported as changed: %+v", d)
	}
}

func TestDiff_LogLevelOnly(t *testing.T) {
	t.Parallel()
	new := baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(baseConfig(), new)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Errorf("diff = %+v", d)
	}
	if len(d.RestartRequired) != 0 {
		t.Errorf("RestartRequired = %v, want none", d.RestartRequired)
	}
}

func TestDiff_RestartRequired(t *testing.T) {
	t.Parallel()
	new := baseConfig()
	new.Server.ListenAddr = ":9191"
	new.Catalog.Dir = "other"
	new.Mirrors = []catalog.SourceConfig{{Dir: "mirror"}}
	new.Output.Diff = true
	new.Edits[0].Value = false

	d := config.Diff(baseConfig(), new)
	want := []string{"server.listen_addr", "catalog", "mirrors", "output", "edits"}
	if !slices.Equal(d.RestartRequired, want) {
		t.Errorf("RestartRequired = %v, want %v", d.RestartRequired, want)
	}
	if d.LogLevelChanged {
		t.Error("log level reported as changed")
	}
}
