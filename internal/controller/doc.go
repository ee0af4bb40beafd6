// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller drives benchmark runs against an execution engine.
//
// The Controller is the top-level state machine: it starts a run,
// polls the engine's progress/result/telemetry feeds on a fixed tick,
// merges them into bounded buffers, detects completion, fetches the
// authoritative run batch, and for multi-step campaigns sequences a
// queue of configurations one at a time.
//
// # Key Types
//
//   - Controller: The run state machine and campaign sequencer
//   - Options: Tick interval, buffer capacities, settle delay
//   - Notification: Lifecycle events on a non-blocking channel
//
// # Lifecycle
//
// Idle -> Starting -> Polling -> Finalizing -> (Advancing -> Polling | Done),
// with Failed reachable from Starting or Polling on unrecoverable error
// and Stopped reachable from Polling on user cancellation.
//
// # Usage
//
//	ctl := controller.New(engineClient, controller.DefaultOptions())
//	if err := ctl.Start(cfgs...); err != nil {
//	    log.Fatal(err)
//	}
//	for n := range ctl.Notifications() {
//	    fmt.Println(n.Type, ctl.StatusText())
//	}
//
// Every tick captures the controller epoch before touching state; a
// tick whose epoch went stale (because Stop or a new Start advanced it
// mid-flight) discards its responses instead of applying them.
package controller
