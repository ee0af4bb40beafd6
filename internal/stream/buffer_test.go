// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// BUFFER TESTS
// =============================================================================

func TestBuffer_MergeWithinCapacity(t *testing.T) {
	b := NewBuffer[int](10)
	b.Merge([]int{1, 2, 3})
	b.Merge([]int{4, 5})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.Items())
	assert.Equal(t, 5, b.Len())
}

func TestBuffer_EvictsOldestFirst(t *testing.T) {
	b := NewBuffer[int](5)
	b.Merge([]int{1, 2, 3, 4, 5})
	b.Merge([]int{6, 7})

	assert.Equal(t, []int{3, 4, 5, 6, 7}, b.Items())
	assert.Equal(t, 5, b.Len())
}

// Telemetry window scenario: 610 samples through a capacity-600 buffer
// must retain exactly samples 10..609.
func TestBuffer_TelemetryWindow(t *testing.T) {
	b := NewBuffer[int](600)
	for i := 0; i < 610; i += 10 {
		batch := make([]int, 10)
		for j := range batch {
			batch[j] = i + j
		}
		b.Merge(batch)
	}

	items := b.Items()
	require.Len(t, items, 600)
	assert.Equal(t, 10, items[0])
	assert.Equal(t, 609, items[599])
}

// Once the window has wrapped past the end of the backing array, Items
// must still come back oldest first and an oversized batch must reset
// the wrap cleanly.
func TestBuffer_WrapAroundKeepsOrder(t *testing.T) {
	b := NewBuffer[int](4)
	b.Merge([]int{1, 2, 3, 4})
	b.Merge([]int{5})
	b.Merge([]int{6, 7})
	assert.Equal(t, []int{4, 5, 6, 7}, b.Items())

	b.Merge([]int{8, 9})
	assert.Equal(t, []int{6, 7, 8, 9}, b.Items())

	// Oversized batch after wrapping replaces the window outright.
	b.Merge([]int{10, 11, 12, 13, 14})
	assert.Equal(t, []int{11, 12, 13, 14}, b.Items())
	assert.Equal(t, 4, b.Len())
}

func TestBuffer_OversizedBatchKeepsTail(t *testing.T) {
	b := NewBuffer[int](3)
	big := []int{1, 2, 3, 4, 5, 6, 7}
	b.Merge(big)

	assert.Equal(t, []int{5, 6, 7}, b.Items())
}

// Merging is associative: one big batch and the same items split across
// calls must produce the same window.
func TestBuffer_MergeAssociative(t *testing.T) {
	whole := NewBuffer[int](4)
	split := NewBuffer[int](4)

	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	whole.Merge(items)
	for _, it := range items {
		split.Merge([]int{it})
	}

	assert.Equal(t, whole.Items(), split.Items())
}

func TestBuffer_EmptyMergeIsNoop(t *testing.T) {
	b := NewBuffer[string](2)
	b.Merge(nil)
	b.Merge([]string{})

	assert.Equal(t, 0, b.Len())
}

func TestBuffer_Clear(t *testing.T) {
	b := NewBuffer[int](4)
	b.Merge([]int{1, 2, 3})
	b.Clear()

	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Items())

	// Still usable after clearing.
	b.Merge([]int{9})
	assert.Equal(t, []int{9}, b.Items())
}

func TestBuffer_ItemsReturnsCopy(t *testing.T) {
	b := NewBuffer[int](4)
	b.Merge([]int{1, 2})

	items := b.Items()
	items[0] = 99

	assert.Equal(t, []int{1, 2}, b.Items())
}

func TestBuffer_InvalidCapacityPanics(t *testing.T) {
	assert.Panics(t, func() { NewBuffer[int](0) })
	assert.Panics(t, func() { NewBuffer[int](-1) })
}

func TestBuffer_ConcurrentMergeAndRead(t *testing.T) {
	b := NewBuffer[int](100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			b.Merge([]int{n})
		}(i)
		go func() {
			defer wg.Done()
			_ = b.Items()
			_ = b.Len()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, b.Len())
}
