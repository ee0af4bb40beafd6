// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// rigbench.
//
// # Commands Overview
//
//   - run: execute a benchmark run or step sweep
//   - campaign: execute a YAML campaign plan
//   - monitor: tail the daemon's feeds without controlling the run
//   - history: list, show, export, and delete stored runs
//   - config: manage the TOML configuration file
//   - version: print build information
//
// # Usage
//
// main.go delegates straight to the root command:
//
//	if err := cli.Execute(); err != nil {
//	    os.Exit(1)
//	}
package cli
