package patch

import (
	"maps"
	"slices"
)

// Report summarises a patch run.
type Report struct {
	// Rules maps a rule name to the number of items it changed.
	Rules map[string]int
	// DirectEdits counts JSON Patch operations applied to records addressed
	// by identifier, including extra edits.
	DirectEdits int
	// Stages counts hideout stages whose construction time was set.
	Stages int
}

func newReport() Report {
	return Report{Rules: make(map[string]int, len(rules))}
}

// RuleNames returns the rule names in the report, sorted.
func (r Report) RuleNames() []string {
	return slices.Sorted(maps.Keys(r.Rules))
}

// ItemsChanged sums the per-rule counts. An item changed by two rules is
// counted twice.
func (r Report) ItemsChanged() int {
	n := 0
	for _, c := range r.Rules {
		n += c
	}
	return n
}
