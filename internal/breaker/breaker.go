// Package breaker implements a Closed/Open/Half-Open circuit breaker with an
// injectable clock so its transitions can be driven from tests.
package breaker

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
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

// ErrOpen is returned without calling the guarded function while the breaker
// is open or while all half-open trial slots are taken.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name string
	// FailureThreshold consecutive failures, each no further than Window from
	// the previous one, trip the breaker.
	FailureThreshold int
	Window           time.Duration
	Cooldown         time.Duration
	HalfOpenMaxCalls int
	// IsFailure decides which errors count against the breaker. Nil counts
	// every non-nil error.
	IsFailure     func(error) bool
	OnStateChange func(name string, from, to State)
	Now           func() time.Time
}

type Breaker struct {
	mu sync.Mutex
	s  Settings

	state       State
	generation  uint64
	failures    int
	lastFailure time.Time
	openedAt    time.Time
	trials      int
}

func New(s Settings) *Breaker {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 5
	}
	if s.HalfOpenMaxCalls <= 0 {
		s.HalfOpenMaxCalls = 1
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.IsFailure == nil {
		s.IsFailure = func(err error) bool { return err != nil }
	}
	return &Breaker{s: s}
}

// State reports the current state, moving Open to Half-Open once the cooldown
// has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	notify := b.refresh(b.s.Now())
	st := b.state
	b.mu.Unlock()
	notify()
	return st
}

// Execute runs fn when the breaker admits the call and records its outcome.
func (b *Breaker) Execute(fn func() error) error {
	done, err := b.Allow()
	if err != nil {
		return err
	}
	err = fn()
	done(err)
	return err
}

// Allow reserves a call slot. The returned done func must be called exactly
// once with the outcome of the call.
func (b *Breaker) Allow() (func(error), error) {
	b.mu.Lock()
	notify := b.refresh(b.s.Now())

	switch b.state {
	case StateOpen:
		b.mu.Unlock()
		notify()
		return nil, ErrOpen
	case StateHalfOpen:
		if b.trials >= b.s.HalfOpenMaxCalls {
			b.mu.Unlock()
			notify()
			return nil, ErrOpen
		}
		b.trials++
	}
	gen := b.generation
	b.mu.Unlock()
	notify()

	var once sync.Once
	return func(err error) {
		once.Do(func() { b.record(gen, err) })
	}, nil
}

func (b *Breaker) record(gen uint64, err error) {
	b.mu.Lock()
	now := b.s.Now()
	notify := b.refresh(now)
	if gen != b.generation {
		// outcome of a call admitted in an earlier state
		b.mu.Unlock()
		notify()
		return
	}

	failed := err != nil && b.s.IsFailure(err)
	var change func()
	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			break
		}
		if b.failures > 0 && b.s.Window > 0 && now.Sub(b.lastFailure) > b.s.Window {
			b.failures = 0
		}
		b.failures++
		b.lastFailure = now
		if b.failures >= b.s.FailureThreshold {
			change = b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		if failed {
			change = b.setState(StateOpen, now)
		} else {
			change = b.setState(StateClosed, now)
		}
	}
	b.mu.Unlock()
	notify()
	if change != nil {
		change()
	}
}

// refresh must be called with mu held; the returned func runs the state
// change callback and must be called after mu is released.
func (b *Breaker) refresh(now time.Time) func() {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.s.Cooldown {
		return b.setState(StateHalfOpen, now)
	}
	return func() {}
}

func (b *Breaker) setState(to State, now time.Time) func() {
	from := b.state
	b.state = to
	b.generation++
	b.failures = 0
	b.lastFailure = time.Time{}
	b.trials = 0
	if to == StateOpen {
		b.openedAt = now
	}
	cb := b.s.OnStateChange
	if cb == nil || from == to {
		return func() {}
	}
	name := b.s.Name
	return func() { cb(name, from, to) }
}
