// Package mailbox implements the lock-free data-plane boundaries that
// connect the RT loop to non-RT producers: a single-writer/multi-reader
// seqlock cell for the game-input snapshot, and a bounded ring buffer for
// jitter samples.
package mailbox

import "sync/atomic"

// Cell is a versioned, lock-free snapshot cell holding one Copy value of
// type T. A reader that completes Read has observed a state that was, at
// some moment between its invocation and return, simultaneously present;
// there is no freshness guarantee. Writers never block. The zero value is
// not usable; construct with NewCell.
//
// T must be a plain value type (no pointers, no slices, no maps) so that a
// torn intermediate read is merely stale rather than unsafe to use: every
// field of InputSnapshot below is scalar for exactly this reason.
//
// This is the standard seqlock pattern: the writer brackets the payload
// store between two sequence-counter increments (odd while writing, even
// once published); a reader retries whenever it observes an odd sequence,
// or whenever the sequence changed between its two loads.
type Cell[T any] struct {
	seq  atomic.Uint32
	data T
}

// NewCell constructs a Cell holding the given initial value.
func NewCell[T any](initial T) *Cell[T] {
	c := &Cell[T]{data: initial}
	return c
}

// Write publishes a new value. Single-writer only: concurrent writers are
// not supported (the design assumes one producer thread). Never blocks.
func (c *Cell[T]) Write(value T) {
	c.seq.Add(1) // now odd: a write is in progress
	c.data = value
	c.seq.Add(1) // now even: the snapshot is coherent and published
}

// Read returns the most recently published coherent value. It may retry
// under adversarial scheduling but in practice retries at most once per
// concurrent write.
func (c *Cell[T]) Read() T {
	for {
		start := c.seq.Load()
		if start&1 != 0 {
			continue
		}
		value := c.data
		end := c.seq.Load()
		if start == end {
			return value
		}
	}
}
