package showapi

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed   breakerState = iota // requests flow
	breakerOpen                         // backend known down; fail fast
	breakerHalfOpen                     // cooldown over; next request probes
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// breaker trips open after threshold consecutive backend failures
// (transport errors, 429 and 5xx) and stays open for cooldown.
type breaker struct {
	mu          sync.Mutex
	state       breakerState
	consecutive int
	threshold   int
	cooldown    time.Duration
	openedAt    time.Time
	now         func() time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// allow reports the state a request would run under and whether it may run.
func (b *breaker) allow() (breakerState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return breakerOpen, false
		}
		b.state = breakerHalfOpen
	}
	return b.state, true
}

// success closes the breaker and returns the previous state.
func (b *breaker) success() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.state
	b.consecutive = 0
	b.state = breakerClosed
	return prev
}

// failure counts a failure and returns the new state.
func (b *breaker) failure() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive++
	if b.state == breakerHalfOpen || b.consecutive >= b.threshold {
		b.state = breakerOpen
		b.openedAt = b.now()
	}
	return b.state
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
