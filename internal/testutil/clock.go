package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is the base time used by NewStepClock when none is given.
var DefaultEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// StepClock provides a thread-safe deterministic wall clock for tests.
//
// Each call to Now returns the base time advanced by one more step, so rows
// written by successive saves get distinct, predictable created_at values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewStepClock creates a clock starting at base. A zero base means
// DefaultEpoch and a non-positive step means one second.
//
// The first call to Now() returns base.
func NewStepClock(base time.Time, step time.Duration) *StepClock {
	if base.IsZero() {
		base = DefaultEpoch
	}
	if step <= 0 {
		step = time.Second
	}
	return &StepClock{base: base.UTC(), step: step}
}

// Now returns the current tick and advances the clock.
// Matches the func() time.Time shape persist.WithClock expects.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Calls returns how many times Now has been called since the last Reset.
func (c *StepClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock to its base.
//
// Used for test reuse. After Reset(), the next call to Now() returns base.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
