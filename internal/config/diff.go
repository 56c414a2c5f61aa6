package config

import "reflect"

// ConfigDiff describes what changed between two configs. Only the log level
// can be applied to a running harness; every other change is listed in
// RestartRequired because the patch hooks have already run.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// RestartRequired names the changed top-level settings that only take
	// effect on the next start, in a stable order.
	RestartRequired []string
}

// Changed reports whether anything differs.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Server.ListenAddr != new.Server.ListenAddr {
		d.RestartRequired = append(d.RestartRequired, "server.listen_addr")
	}
	if old.Catalog != new.Catalog {
		d.RestartRequired = append(d.RestartRequired, "catalog")
	}
	if !reflect.DeepEqual(old.Mirrors, new.Mirrors) {
		d.RestartRequired = append(d.RestartRequired, "mirrors")
	}
	if old.Configs != new.Configs {
		d.RestartRequired = append(d.RestartRequired, "configs")
	}
	if old.Output != new.Output {
		d.RestartRequired = append(d.RestartRequired, "output")
	}
	if !reflect.DeepEqual(old.Edits, new.Edits) {
		d.RestartRequired = append(d.RestartRequired, "edits")
	}

	return d
}
