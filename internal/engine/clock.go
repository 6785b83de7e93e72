package engine

import "sync/atomic"

// Clock is a monotonic logical counter.
//
// The store uses it to key subscribers; the promise tracker uses it to key
// pending operations. Values are never wall-clock derived, so recordings
// stay identical across runs.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock to 0. The next call to Next returns 1 again.
func (c *Clock) Reset() {
	c.seq.Store(0)
}
