// Package latch provides a write-once cell.
//
// A Cell accepts its first value and rejects every later write until it is
// explicitly Reset. Protocol mailbox fields use it so a duplicate or replayed
// delivery can never replace content that the state machine already acted on.
package latch

import "sync"

// Cell holds at most one value of type T per lifetime.
// The zero value is an empty, ready-to-use cell.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
	set   bool
}

// TrySet stores v if the cell is empty and reports whether it did.
func (c *Cell[T]) TrySet(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set {
		return false
	}
	c.value = v
	c.set = true
	return true
}

// Get returns the stored value and whether one is present.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.set
}

// IsSet reports whether the cell holds a value.
func (c *Cell[T]) IsSet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

// Reset empties the cell so it can latch again.
func (c *Cell[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.set = false
}
