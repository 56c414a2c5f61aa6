// Package resilience guards calls to remote document stores.
//
// [Breaker] is a three-state circuit breaker (closed, open, half-open) that
// stops hammering a store after repeated faults. [Failover] tries an ordered
// list of equivalent backends, each behind its own breaker, and moves on to
// the next one when a backend faults or its breaker is open.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] while the breaker is open.
var ErrOpen = errors.New("resilience: circuit open")

// State is the operating mode of a [Breaker].
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects calls with [ErrOpen] until the cooldown elapses.
	StateOpen

	// StateHalfOpen lets a single probe through. Its outcome closes or
	// re-opens the breaker.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a [Breaker].
type BreakerConfig struct {
	// Name labels log lines.
	Name string

	// MaxFaults is the number of consecutive faults that opens the breaker.
	// Default: 3.
	MaxFaults int

	// Cooldown is how long the breaker stays open before allowing a probe.
	// Default: 30s.
	Cooldown time.Duration

	// IsFault classifies errors. Errors that are not faults (a missing
	// document, a cancelled context) pass through without being counted.
	// Default: [DefaultIsFault].
	IsFault func(error) bool
}

// DefaultIsFault treats every error except context cancellation as a fault.
func DefaultIsFault(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	name      string
	maxFaults int
	cooldown  time.Duration
	isFault   func(error) bool
	now       func() time.Time

	mu       sync.Mutex
	state    State
	faults   int
	openedAt time.Time
	probing  bool
}

// NewBreaker returns a closed [Breaker]. Zero config fields take defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFaults <= 0 {
		cfg.MaxFaults = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.IsFault == nil {
		cfg.IsFault = DefaultIsFault
	}
	return &Breaker{
		name:      cfg.Name,
		maxFaults: cfg.MaxFaults,
		cooldown:  cfg.Cooldown,
		isFault:   cfg.IsFault,
		now:       time.Now,
	}
}

// Do runs fn unless the breaker is open, and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	probe, err := b.allow()
	if err != nil {
		return err
	}
	err = fn()
	b.record(probe, err)
	return err
}

func (b *Breaker) allow() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false, ErrOpen
		}
		b.state = StateHalfOpen
		slog.Debug("circuit half-open", "name", b.name)
		fallthrough
	case StateHalfOpen:
		if b.probing {
			return false, ErrOpen
		}
		b.probing = true
		return true, nil
	}
	return false, nil
}

func (b *Breaker) record(probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}
	if !b.isFault(err) {
		if err == nil || probe {
			b.state, b.faults = StateClosed, 0
		}
		return
	}

	b.faults++
	if probe || b.faults >= b.maxFaults {
		if b.state != StateOpen {
			slog.Warn("circuit opened", "name", b.name, "consecutive_faults", b.faults, "err", err)
		}
		b.state, b.openedAt = StateOpen, b.now()
	}
}

// State returns the current state. An open breaker whose cooldown has elapsed
// reports [StateHalfOpen]; the transition itself happens on the next call.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Reset closes the breaker and clears its fault count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state, b.faults, b.probing = StateClosed, 0, false
}
