// Package mock provides test doubles for the host collaborator interfaces.
//
// All doubles record their calls so tests can assert on how a modification
// used the host. Set response fields before the code under test runs;
// mutating them during a concurrent call is the caller's responsibility.
//
// Example:
//
//	log := &mock.Logger{}
//	reg := &mock.ConfigRegistry{Sections: map[string]any{"spt-inraid": cfg}}
//	err := startup.Apply(reg, log)
package mock

import (
	"fmt"
	"sync"

	"github.com/MrWong99/tablepatch/pkg/host"
)

// LogCall records a single Logger invocation.
type LogCall struct {
	// Level is "debug", "info", "warn" or "error". LogWithColor records "info".
	Level string
	// Msg is the message passed to the logger.
	Msg string
	// Args are the key/value pairs passed to a leveled method.
	Args []any
	// Text and Background are set for LogWithColor calls only.
	Text       host.TextColor
	Background host.BackgroundColor
	// Colored reports whether the call came through LogWithColor.
	Colored bool
}

// Logger is a mock implementation of host.Logger.
type Logger struct {
	mu    sync.Mutex
	calls []LogCall
}

func (l *Logger) record(c LogCall) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

// Debug records a debug call.
func (l *Logger) Debug(msg string, args ...any) {
	l.record(LogCall{Level: "debug", Msg: msg, Args: args})
}

// Info records an info call.
func (l *Logger) Info(msg string, args ...any) {
	l.record(LogCall{Level: "info", Msg: msg, Args: args})
}

// Warn records a warn call.
func (l *Logger) Warn(msg string, args ...any) {
	l.record(LogCall{Level: "warn", Msg: msg, Args: args})
}

// Error records an error call.
func (l *Logger) Error(msg string, args ...any) {
	l.record(LogCall{Level: "error", Msg: msg, Args: args})
}

// LogWithColor records a coloured info call.
func (l *Logger) LogWithColor(msg string, text host.TextColor, bg host.BackgroundColor) {
	l.record(LogCall{Level: "info", Msg: msg, Text: text, Background: bg, Colored: true})
}

// Calls returns a copy of all recorded calls in order.
func (l *Logger) Calls() []LogCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogCall, len(l.calls))
	copy(out, l.calls)
	return out
}

// CallsAt returns the recorded calls of the given level.
func (l *Logger) CallsAt(level string) []LogCall {
	var out []LogCall
	for _, c := range l.Calls() {
		if c.Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears all recorded calls.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// Classifier is a mock implementation of host.Classifier backed by a static
// map from item ID to the categories it belongs to. No hierarchy is applied:
// list every category an item should match.
type Classifier struct {
	Categories map[string][]string

	mu    sync.Mutex
	calls int
}

// IsOfCategory reports whether category is listed for itemID.
func (c *Classifier) IsOfCategory(itemID, category string) bool {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	for _, cat := range c.Categories[itemID] {
		if cat == category {
			return true
		}
	}
	return false
}

// CallCount returns how many times IsOfCategory was called.
func (c *Classifier) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// ConfigRegistry is a mock implementation of host.ConfigRegistry.
type ConfigRegistry struct {
	// Sections maps section names to the values returned by Section.
	Sections map[string]any
	// Err, if non-nil, is returned by every Section call.
	Err error

	mu        sync.Mutex
	requested []string
}

// Section returns Sections[name] or an error wrapping host.ErrServiceNotRegistered.
func (r *ConfigRegistry) Section(name string) (any, error) {
	r.mu.Lock()
	r.requested = append(r.requested, name)
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	v, ok := r.Sections[name]
	if !ok {
		return nil, fmt.Errorf("mock: section %q: %w", name, host.ErrServiceNotRegistered)
	}
	return v, nil
}

// Requested returns the section names requested so far.
func (r *ConfigRegistry) Requested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requested))
	copy(out, r.requested)
	return out
}

// Container is a mock implementation of host.Container.
type Container struct {
	Services map[string]any

	mu       sync.Mutex
	resolved []string
}

// Resolve returns Services[name] or an error wrapping host.ErrServiceNotRegistered.
func (c *Container) Resolve(name string) (any, error) {
	c.mu.Lock()
	c.resolved = append(c.resolved, name)
	c.mu.Unlock()
	v, ok := c.Services[name]
	if !ok {
		return nil, fmt.Errorf("mock: %q: %w", name, host.ErrServiceNotRegistered)
	}
	return v, nil
}

// Resolved returns the service names resolved so far, in order.
func (c *Container) Resolved() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.resolved))
	copy(out, c.resolved)
	return out
}

// Compile-time interface assertions.
var (
	_ host.Logger         = (*Logger)(nil)
	_ host.Classifier     = (*Classifier)(nil)
	_ host.ConfigRegistry = (*ConfigRegistry)(nil)
	_ host.Container      = (*Container)(nil)
)
