package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every backend of a [Failover] failed or was
// skipped.
var ErrAllFailed = errors.New("resilience: all backends failed")

type backend[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Failover holds an ordered list of equivalent backends. The first one is
// the primary; the rest are tried in order when earlier ones fail.
type Failover[T any] struct {
	cfg      BreakerConfig
	backends []backend[T]
}

// NewFailover returns a [Failover] with primary as its first backend. Every
// backend gets its own [Breaker] built from cfg.
func NewFailover[T any](primaryName string, primary T, cfg BreakerConfig) *Failover[T] {
	f := &Failover[T]{cfg: cfg}
	f.Add(primaryName, primary)
	return f
}

// Add appends a backend.
func (f *Failover[T]) Add(name string, v T) {
	cfg := f.cfg
	cfg.Name = name
	f.backends = append(f.backends, backend[T]{name: name, value: v, breaker: NewBreaker(cfg)})
}

// Each calls fn with every backend value in order.
func (f *Failover[T]) Each(fn func(name string, v T)) {
	for _, b := range f.backends {
		fn(b.name, b.value)
	}
}

// Primary returns the first backend.
func (f *Failover[T]) Primary() T {
	return f.backends[0].value
}

// Breaker returns the breaker guarding the named backend, or nil.
func (f *Failover[T]) Breaker(name string) *Breaker {
	for _, b := range f.backends {
		if b.name == name {
			return b.breaker
		}
	}
	return nil
}

// Do tries fn against each backend in order and returns the first result
// that succeeds. When all fail the returned error wraps [ErrAllFailed] and
// every backend's error, so callers can still match a common cause.
func Do[T, R any](f *Failover[T], fn func(T) (R, error)) (R, error) {
	var (
		zero R
		errs []error
	)
	for _, b := range f.backends {
		var res R
		err := b.breaker.Do(func() error {
			var err error
			res, err = fn(b.value)
			return err
		})
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrOpen) {
			slog.Debug("backend skipped, circuit open", "backend", b.name)
		} else {
			slog.Debug("backend failed, trying next", "backend", b.name, "err", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
	}
	return zero, fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(errs...))
}
