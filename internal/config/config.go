// Package config provides the configuration schema and loader for tablepatch.
package config

import (
	"github.com/MrWong99/tablepatch/internal/catalog"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`

	// Catalog locates the host database documents.
	Catalog catalog.SourceConfig `yaml:"catalog"`

	// Mirrors are fallback catalog sources, tried in order when a document
	// is missing from the catalog source or the source keeps failing.
	Mirrors []catalog.SourceConfig `yaml:"mirrors"`

	// Configs locates the runtime config section documents. When its driver
	// and location are empty the catalog source is reused.
	Configs catalog.SourceConfig `yaml:"configs"`

	Output OutputConfig `yaml:"output"`

	// Edits are extra direct-identifier edits applied after the built-in
	// rules.
	Edits []EditConfig `yaml:"edits"`
}

// ServerConfig holds the harness HTTP server and logging settings.
type ServerConfig struct {
	// ListenAddr is the address serving /healthz, /readyz and /metrics
	// (e.g. ":9090"). When empty the harness exits after patching.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Reloaded while the server runs.
	LogLevel LogLevel `yaml:"log_level"`
}

// OutputConfig controls what happens with the patched database.
type OutputConfig struct {
	// Dir, when set, receives the patched documents in the same layout as a
	// dir catalog source.
	Dir string `yaml:"dir"`

	// Diff prints a line diff of every changed record to stdout.
	Diff bool `yaml:"diff"`

	// Journal, when set, is a JSON-lines file to which every run appends
	// its patch report.
	Journal string `yaml:"journal"`
}

// EditConfig is one extra direct-identifier edit.
type EditConfig struct {
	// Table is "items", "locations" or "globals".
	Table string `yaml:"table"`

	// ID is the record identifier. Ignored for globals.
	ID string `yaml:"id"`

	// Path is a JSON pointer into the record, e.g. "/_props/Weight".
	Path string `yaml:"path"`

	// Value replaces the field. Any YAML scalar, list or map.
	Value any `yaml:"value"`
}

// ConfigsSource returns the source configuration for the runtime config
// sections, falling back to the catalog source.
func (c *Config) ConfigsSource() catalog.SourceConfig {
	if c.Configs == (catalog.SourceConfig{}) {
		return c.Catalog
	}
	return c.Configs
}
