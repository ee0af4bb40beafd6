// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"sync"
)

// =============================================================================
// BOUNDED BUFFER
// =============================================================================

// Buffer is a bounded append buffer. Merge appends new items in arrival
// order and evicts from the front once the configured capacity is
// exceeded, so the buffer always retains the most recent items.
//
// The window is a ring over a fixed backing array: once full, each new
// item overwrites the oldest slot and advances the head, so eviction is
// O(1) per item with no copying of the retained window.
type Buffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewBuffer creates a buffer that retains at most capacity items.
// A capacity <= 0 panics: an unbounded live buffer would grow with the
// whole run and defeat the point of the window.
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("stream: buffer capacity must be positive")
	}
	return &Buffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Merge appends newItems in order, evicting the oldest entries so the
// buffer never exceeds its capacity. Merging is associative: splitting a
// batch across multiple calls yields the same final window.
func (b *Buffer[T]) Merge(newItems []T) {
	if len(newItems) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// A batch at least as large as the capacity replaces the window
	// outright; only its tail survives.
	if len(newItems) >= b.capacity {
		copy(b.items, newItems[len(newItems)-b.capacity:])
		b.head = 0
		b.size = b.capacity
		return
	}

	for _, item := range newItems {
		if b.size < b.capacity {
			b.items[(b.head+b.size)%b.capacity] = item
			b.size++
			continue
		}
		// Full: overwrite the oldest slot.
		b.items[b.head] = item
		b.head = (b.head + 1) % b.capacity
	}
}

// Items returns a copy of the buffered items, oldest first.
func (b *Buffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, b.size)
	for i := range out {
		out[i] = b.items[(b.head+i)%b.capacity]
	}
	return out
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Clear discards all buffered items. The backing array is retained but
// stale slots are zeroed so evicted values don't outlive the window.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.size = 0
}
