// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rigbench/internal/model"
)

// ErrBatchNotFound is returned when a stored batch does not exist.
var ErrBatchNotFound = errors.New("batch not found")

// schema creates the runs table. The full batch is stored as a JSON
// blob; the indexed columns exist for listing without decoding.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	model       TEXT NOT NULL,
	mode        TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	ended_at    INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	batch       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// =============================================================================
// STORE
// =============================================================================

// Store persists finalized run batches to SQLite.
type Store struct {
	db *sql.DB
}

// RunInfo is the listing metadata for one stored run.
type RunInfo struct {
	ID        string
	Model     string
	Mode      model.RunMode
	StartTime time.Time
	EndTime   time.Time
	Total     int
	Failed    int
}

// OpenStore opens (creating if needed) the run store at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save persists a finalized batch. Saving the same id again replaces
// the stored row.
func (s *Store) Save(ctx context.Context, batch *model.RunBatch) error {
	if batch == nil || batch.ID == "" {
		return errors.New("batch must have an id")
	}

	blob, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, model, mode, started_at, ended_at, total, failed, batch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.Config.Model,
		string(batch.Config.Mode),
		batch.StartTime.UnixMilli(),
		batch.EndTime.UnixMilli(),
		len(batch.Records),
		batch.FailedCount(),
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// Load retrieves a stored batch by id.
func (s *Store) Load(ctx context.Context, id string) (*model.RunBatch, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT batch FROM runs WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}

	var batch model.RunBatch
	if err := json.Unmarshal([]byte(blob), &batch); err != nil {
		return nil, fmt.Errorf("failed to decode batch: %w", err)
	}
	return &batch, nil
}

// List returns metadata for stored runs, newest first, up to limit
// (0 = no limit).
func (s *Store) List(ctx context.Context, limit int) ([]RunInfo, error) {
	query := "SELECT id, model, mode, started_at, ended_at, total, failed FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var mode string
		var started, ended int64
		if err := rows.Scan(&info.ID, &info.Model, &mode, &started, &ended, &info.Total, &info.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		info.Mode = model.RunMode(mode)
		info.StartTime = time.UnixMilli(started)
		info.EndTime = time.UnixMilli(ended)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a stored batch by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBatchNotFound
	}
	return nil
}
