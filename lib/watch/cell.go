// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import "sync"

// Cell is an observable container for a single value. One writer calls
// Set; any number of readers call Get or Watch concurrently. The zero
// value is not usable — construct with NewCell.
type Cell[T any] struct {
	mu        sync.Mutex
	value     T
	observers map[int]chan struct{}
	nextID    int
}

// NewCell creates a cell holding the given initial value.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:     initial,
		observers: make(map[int]chan struct{}),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the current value and wakes all registered observers.
// Only one goroutine may call Set; concurrent writers would race on
// which value is "latest" in a way observers cannot distinguish.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	for _, wake := range c.observers {
		// Non-blocking: a pending wakeup already covers this change.
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// Watch registers an observer. The returned channel receives a signal
// after each change (conflated: one pending signal covers any number
// of intermediate writes); the observer then calls Get for the latest
// value. The cancel function removes the observer and must be called
// to release it.
func (c *Cell[T]) Watch() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	wake := make(chan struct{}, 1)
	c.observers[id] = wake

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
	return wake, cancel
}
