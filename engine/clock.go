package engine

import "sync/atomic"

// Clock is a monotonic logical clock stamping trace events within one run.
// Every dispatch gets a strictly increasing seq number, so a recorded
// trace reproduces the exact dispatch order without wall-clock races.
//
// Thread-safety: atomic operations make Clock safe for concurrent use,
// although evaluation itself is single-threaded.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock. Each call
// returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
