package hostcfg

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/MrWong99/tablepatch/pkg/host"
)

// ErrSectionNotRegistered is wrapped by [MissingSectionError].
var ErrSectionNotRegistered = errors.New("hostcfg: section not registered")

// MissingSectionError reports a lookup of an unknown section. It means the
// host's config layout no longer matches what the caller expects.
type MissingSectionError struct {
	Name string
	// Suggestion is the closest registered name, if any is close enough.
	Suggestion string
}

func (e *MissingSectionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("hostcfg: section %q not registered (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("hostcfg: section %q not registered", e.Name)
}

// Unwrap returns [ErrSectionNotRegistered].
func (e *MissingSectionError) Unwrap() error { return ErrSectionNotRegistered }

var _ host.ConfigRegistry = (*Registry)(nil)

// Registry maps section names to section values. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sections map[string]any
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{sections: make(map[string]any)}
}

// Register stores section under name, replacing any previous value.
func (r *Registry) Register(name string, section any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections[name] = section
}

// Section implements [host.ConfigRegistry]. It returns a *[MissingSectionError]
// for unknown names.
func (r *Registry) Section(name string) (any, error) {
	r.mu.RLock()
	s, ok := r.sections[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &MissingSectionError{Name: name, Suggestion: r.closest(name)}
	}
	return s, nil
}

// Names returns the registered section names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sections))
	for n := range r.sections {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// closest returns the registered name nearest to name when the edit distance
// is at most half its length.
func (r *Registry) closest(name string) string {
	best, bestDist := "", len(name)/2+1
	for _, n := range r.Names() {
		if d := levenshtein.ComputeDistance(name, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// Get resolves the section called name from r and asserts it to T.
func Get[T any](r host.ConfigRegistry, name string) (T, error) {
	var zero T
	v, err := r.Section(name)
	if err != nil {
		return zero, err
	}
	s, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("hostcfg: section %q is %T, want %T", name, v, zero)
	}
	return s, nil
}
