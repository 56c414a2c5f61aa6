package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPending is reported by a [Gate] that has not been resolved yet.
var ErrPending = errors.New("pending")

// Gate is a one-shot readiness condition: it fails with [ErrPending] until
// [Gate.Pass] or [Gate.Fail] is called. It is safe for concurrent use.
type Gate struct {
	name string

	mu   sync.RWMutex
	done bool
	err  error
}

// NewGate returns an unresolved gate reported under name.
func NewGate(name string) *Gate {
	return &Gate{name: name}
}

// Pass marks the gate as healthy.
func (g *Gate) Pass() { g.resolve(nil) }

// Fail marks the gate as failed with err.
func (g *Gate) Fail(err error) {
	if err == nil {
		err = errors.New("failed")
	}
	g.resolve(err)
}

func (g *Gate) resolve(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.done, g.err = true, err
}

// Err returns the gate's current state as a check result.
func (g *Gate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch {
	case !g.done:
		return ErrPending
	case g.err != nil:
		return fmt.Errorf("%s: %w", g.name, g.err)
	}
	return nil
}

// Checker adapts the gate to a readiness [Checker].
func (g *Gate) Checker() Checker {
	return Checker{Name: g.name, Check: func(context.Context) error { return g.Err() }}
}
