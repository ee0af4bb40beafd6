// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigbench/internal/model"
)

func batch(id string) *model.RunBatch {
	return &model.RunBatch{
		ID:      id,
		Records: []model.ResultRecord{{ID: id + "-r1", Success: true}},
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistory_AppendToBothLists(t *testing.T) {
	h := New(10)
	h.BeginCampaign()
	h.Append(batch("a"))
	h.Append(batch("b"))

	assert.Equal(t, 2, h.CampaignLen())
	assert.Equal(t, 2, h.GlobalLen())
}

func TestHistory_BeginCampaignClearsCampaignOnly(t *testing.T) {
	h := New(10)
	h.Append(batch("a"))
	h.BeginCampaign()
	h.Append(batch("b"))

	require.Equal(t, 1, h.CampaignLen())
	assert.Equal(t, "b", h.Campaign()[0].ID)
	assert.Equal(t, 2, h.GlobalLen())
}

func TestHistory_GlobalEvictsOldest(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		h.Append(batch(fmt.Sprintf("run-%d", i)))
	}

	global := h.Global()
	require.Len(t, global, 3)
	assert.Equal(t, "run-2", global[0].ID)
	assert.Equal(t, "run-4", global[2].ID)
}

func TestHistory_OrderPreserved(t *testing.T) {
	h := New(10)
	h.BeginCampaign()
	for i := 0; i < 4; i++ {
		h.Append(batch(fmt.Sprintf("run-%d", i)))
	}

	campaign := h.Campaign()
	for i, b := range campaign {
		assert.Equal(t, fmt.Sprintf("run-%d", i), b.ID)
	}
}

// A batch placed in history must be immune to later mutation of the
// original or of any returned copy.
func TestHistory_Immutability(t *testing.T) {
	h := New(10)
	original := batch("a")
	h.Append(original)

	original.Records[0].Success = false

	fromHistory := h.Get("a")
	require.NotNil(t, fromHistory)
	assert.True(t, fromHistory.Records[0].Success)

	fromHistory.Records[0].Success = false
	again := h.Get("a")
	assert.True(t, again.Records[0].Success)
}

func TestHistory_GetMissing(t *testing.T) {
	h := New(10)
	assert.Nil(t, h.Get("nope"))
}
