package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned while the breaker is rejecting calls.
var ErrUnavailable = errors.New("dependency unavailable, breaker open")

// State is the breaker's current disposition toward new calls.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects every call until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets probe calls through to test recovery.
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

// Breaker stops calls to a failing dependency so a store outage does not pile
// up blocked writers. After maxFailures consecutive failures it rejects calls
// for the cooldown period, then lets probes through until two of them succeed.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	successes int
}

// probeSuccesses is how many consecutive half-open successes close the breaker.
const probeSuccesses = 2

// NewBreaker creates a closed breaker.
func NewBreaker(name string, maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{
		name:        name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		state:       StateClosed,
	}
}

// Do runs fn under the breaker. When the breaker is open it returns
// ErrUnavailable without calling fn.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) <= b.cooldown {
			return ErrUnavailable
		}
		b.state = StateHalfOpen
		b.successes = 0
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.openedAt = time.Now()
		// Any half-open failure reopens immediately.
		if b.state == StateHalfOpen || b.failures >= b.maxFailures {
			b.state = StateOpen
		}
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= probeSuccesses {
			b.state = StateClosed
			b.failures = 0
		}
	case StateClosed:
		b.failures = 0
	}
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}
