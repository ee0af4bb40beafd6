// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"sync"

	"github.com/jeranaias/rigbench/internal/model"
)

// DefaultGlobalCapacity is the default bound on the global history.
const DefaultGlobalCapacity = 50

// =============================================================================
// HISTORY
// =============================================================================

// History holds finalized run batches: the current campaign's list and a
// bounded global list. Appending stores a deep copy, so a batch placed
// in history can never be mutated through the original.
type History struct {
	campaign []*model.RunBatch
	global   []*model.RunBatch

	// maxGlobal bounds the global list; oldest batches are evicted first.
	maxGlobal int

	mu sync.RWMutex
}

// New creates a history with the given global capacity.
// A capacity <= 0 uses DefaultGlobalCapacity.
func New(maxGlobal int) *History {
	if maxGlobal <= 0 {
		maxGlobal = DefaultGlobalCapacity
	}
	return &History{maxGlobal: maxGlobal}
}

// BeginCampaign clears the campaign-local list. Called at the start of
// every campaign; the global list is unaffected.
func (h *History) BeginCampaign() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.campaign = nil
}

// Append adds a finalized batch to both lists, evicting the oldest
// global entries beyond the capacity.
func (h *History) Append(batch *model.RunBatch) {
	if batch == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	stored := batch.Clone()
	h.campaign = append(h.campaign, stored)
	h.global = append(h.global, stored)

	if len(h.global) > h.maxGlobal {
		overflow := len(h.global) - h.maxGlobal
		h.global = append([]*model.RunBatch(nil), h.global[overflow:]...)
	}
}

// Campaign returns copies of the current campaign's batches in
// submission order.
func (h *History) Campaign() []*model.RunBatch {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneAll(h.campaign)
}

// Global returns copies of the global history, oldest first.
func (h *History) Global() []*model.RunBatch {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneAll(h.global)
}

// Get returns a copy of the batch with the given id from the global
// history, or nil if it is not retained.
func (h *History) Get(id string) *model.RunBatch {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, b := range h.global {
		if b.ID == id {
			return b.Clone()
		}
	}
	return nil
}

// CampaignLen returns the number of batches in the current campaign.
func (h *History) CampaignLen() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.campaign)
}

// GlobalLen returns the number of batches retained globally.
func (h *History) GlobalLen() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.global)
}

func cloneAll(batches []*model.RunBatch) []*model.RunBatch {
	result := make([]*model.RunBatch, len(batches))
	for i, b := range batches {
		result[i] = b.Clone()
	}
	return result
}
