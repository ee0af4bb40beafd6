// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jeranaias/rigbench/internal/config"
	"github.com/jeranaias/rigbench/internal/configstore"
	"github.com/jeranaias/rigbench/internal/controller"
	"github.com/jeranaias/rigbench/internal/engine"
	"github.com/jeranaias/rigbench/internal/history"
	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// CAMPAIGN EXECUTION
// =============================================================================

// buildController assembles the engine client and controller from the
// effective configuration. The returned store may be nil when
// persistence could not be opened; runs still execute in memory.
func buildController(cfg *config.Config) (*controller.Controller, *history.Store) {
	var store *history.Store
	if path, err := cfg.DatabasePath(); err == nil {
		if s, err := history.OpenStore(path); err == nil {
			store = s
		} else {
			fmt.Fprintf(os.Stderr, "Warning: history database unavailable: %v\n", err)
		}
	}

	eng := engine.NewClientWithConfig(&engine.ClientConfig{
		BaseURL:    cfg.Engine.BaseURL,
		Timeout:    time.Duration(cfg.Engine.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Engine.MaxRetries,
		RetryDelay: time.Duration(cfg.Engine.RetryDelayMs) * time.Millisecond,
	})

	ctrl := controller.New(eng, controller.Options{
		TickInterval:       time.Duration(cfg.Poll.TickIntervalMs) * time.Millisecond,
		SettleDelay:        time.Duration(cfg.Poll.SettleDelayMs) * time.Millisecond,
		ResultBufferCap:    cfg.Poll.ResultBufferCap,
		TelemetryBufferCap: cfg.Poll.TelemetryBufferCap,
		HistoryCapacity:    cfg.History.Capacity,
		Store:              store,
	})
	return ctrl, store
}

// executeCampaign runs the configurations to completion, printing
// lifecycle events as they happen. Ctrl-C stops the active run cleanly
// instead of leaving the daemon benchmarking into the void.
func executeCampaign(cfg *config.Config, cfgs ...model.RunConfiguration) error {
	ctrl, store := buildController(cfg)
	if store != nil {
		defer store.Close()
	}

	if err := ctrl.Start(cfgs...); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(time.Duration(cfg.Poll.TickIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, stopping run...")
			ctrl.Stop()

		case n := <-ctrl.Notifications():
			printNotification(n)

		case <-ticker.C:
		}

		if ctrl.State().Terminal() {
			break
		}
	}

	// Drain any notifications that raced the state change.
	for {
		select {
		case n := <-ctrl.Notifications():
			printNotification(n)
			continue
		default:
		}
		break
	}

	for _, batch := range ctrl.History().Campaign() {
		printBatch(batch)
	}

	saveSessionSnapshot(cfg, cfgs[0])

	switch ctrl.State() {
	case controller.StateFailed:
		return fmt.Errorf("campaign failed: %w", ctrl.Err())
	case controller.StateStopped:
		return fmt.Errorf("campaign stopped")
	}
	fmt.Printf("\nStatus: %s\n", ctrl.StatusText())
	return nil
}

func printNotification(n controller.Notification) {
	switch n.Type {
	case controller.EventRunStarted:
		fmt.Printf("Run %s started (step %d/%d)\n", n.RunID, n.Step, n.StepTotal)
	case controller.EventRunComplete:
		fmt.Printf("Run %s complete (step %d/%d)\n", n.RunID, n.Step, n.StepTotal)
	case controller.EventRunFailed:
		fmt.Fprintf(os.Stderr, "Run %s failed: %s\n", n.RunID, n.Error)
	case controller.EventCampaignComplete:
		fmt.Println("Campaign complete")
	}
}

// saveSessionSnapshot persists the last-used connection parameters so
// the next invocation can default to them. Best-effort.
func saveSessionSnapshot(cfg *config.Config, run model.RunConfiguration) {
	dir, err := config.ConfigDir()
	if err != nil {
		return
	}
	store, err := configstore.OpenSQLite(filepath.Join(dir, "session.db"))
	if err != nil {
		return
	}
	defer store.Close()

	snap, _ := configstore.LoadSnapshot(store)
	snap.Endpoint = run.Endpoint
	snap.APIKey = run.APIKey
	snap.Model = run.Model
	snap.ActiveMode = run.Mode
	if snap.StepRanges == nil {
		snap.StepRanges = make(map[string]model.StepRange)
	}
	if snap.Rounds == nil {
		snap.Rounds = make(map[string]int)
	}
	if run.Mode.IsStep() {
		snap.StepRanges[string(run.Mode)] = run.Steps
	}
	snap.Rounds[string(run.Mode)] = run.Rounds

	if err := configstore.SaveSnapshot(store, snap); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save session: %v\n", err)
	}
}

// loadSessionSnapshot restores the previous session's connection
// parameters over the config defaults.
func loadSessionSnapshot(run model.RunConfiguration) model.RunConfiguration {
	dir, err := config.ConfigDir()
	if err != nil {
		return run
	}
	store, err := configstore.OpenSQLite(filepath.Join(dir, "session.db"))
	if err != nil {
		return run
	}
	defer store.Close()

	snap, err := configstore.LoadSnapshot(store)
	if err != nil {
		return run
	}
	if snap.Endpoint != "" {
		run.Endpoint = snap.Endpoint
	}
	if snap.APIKey != "" {
		run.APIKey = snap.APIKey
	}
	if snap.Model != "" {
		run.Model = snap.Model
	}
	return run
}
