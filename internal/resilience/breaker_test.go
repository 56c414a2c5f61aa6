package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errTest = errors.New("test error")

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg BreakerConfig) (*Breaker, *clock) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker(cfg)
	b.now = c.now
	return b, c
}

func fail() error    { return errTest }
func succeed() error { return nil }

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test"})
	if b.maxFaults != 3 {
		t.Errorf("maxFaults = %d, want 3", b.maxFaults)
	}
	if b.cooldown != 30*time.Second {
		t.Errorf("cooldown = %v, want 30s", b.cooldown)
	}
	if b.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", b.State())
	}
}

func TestBreaker_OpensAfterConsecutiveFaults(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFaults: 2, Cooldown: time.Minute})

	_ = b.Do(fail)
	if b.State() != StateClosed {
		t.Fatal("opened after a single fault")
	}
	_ = b.Do(fail)
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	called := false
	err := b.Do(func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) || called {
		t.Errorf("Do on open breaker: err=%v called=%v", err, called)
	}
}

func TestBreaker_SuccessResetsFaults(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFaults: 2})
	_ = b.Do(fail)
	_ = b.Do(succeed)
	_ = b.Do(fail)
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestBreaker_NonFaultsAreNotCounted(t *testing.T) {
	notFound := errors.New("not found")
	b, _ := newTestBreaker(BreakerConfig{
		MaxFaults: 1,
		IsFault:   func(err error) bool { return err != nil && !errors.Is(err, notFound) },
	})
	for range 3 {
		if err := b.Do(func() error { return notFound }); !errors.Is(err, notFound) {
			t.Fatalf("Do: got %v, want notFound", err)
		}
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestDefaultIsFault(t *testing.T) {
	if DefaultIsFault(nil) {
		t.Error("nil is a fault")
	}
	if DefaultIsFault(fmt.Errorf("open: %w", context.Canceled)) {
		t.Error("cancellation is a fault")
	}
	if !DefaultIsFault(errTest) {
		t.Error("plain error is not a fault")
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name  string
		probe func() error
		want  State
	}{
		{"success closes", succeed, StateClosed},
		{"fault re-opens", fail, StateOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := newTestBreaker(BreakerConfig{MaxFaults: 1, Cooldown: time.Minute})
			_ = b.Do(fail)
			c.advance(time.Minute)
			if b.State() != StateHalfOpen {
				t.Fatalf("state = %v, want half-open after cooldown", b.State())
			}
			_ = b.Do(tt.probe)
			if got := b.State(); got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBreaker_SingleProbe(t *testing.T) {
	b, c := newTestBreaker(BreakerConfig{MaxFaults: 1, Cooldown: time.Minute})
	_ = b.Do(fail)
	c.advance(time.Minute)

	err := b.Do(func() error {
		if inner := b.Do(succeed); !errors.Is(inner, ErrOpen) {
			t.Errorf("concurrent probe: got %v, want ErrOpen", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
}

func TestBreaker_Reset(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFaults: 1, Cooldown: time.Hour})
	_ = b.Do(fail)
	b.Reset()
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed after reset", b.State())
	}
	if err := b.Do(succeed); err != nil {
		t.Errorf("Do after reset: %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
