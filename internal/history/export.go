// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/rigbench/internal/model"
	"github.com/jeranaias/rigbench/internal/util"
)

// =============================================================================
// JSON EXPORT
// =============================================================================

// ExportJSON writes a batch as indented JSON to dir, returning the path
// written. The filename combines the sanitized model name with the run
// start time.
func ExportJSON(batch *model.RunBatch, dir string) (string, error) {
	if batch == nil {
		return "", fmt.Errorf("nothing to export")
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch: %w", err)
	}

	stamp := batch.StartTime
	if stamp.IsZero() {
		stamp = time.Now()
	}
	filename := fmt.Sprintf("%s_%s.json",
		sanitizeFilename(batch.Config.Model),
		stamp.Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	if name == "" {
		return "run"
	}
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		" ", "_",
	)
	return replacer.Replace(name)
}
