// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the rigbench commands: single runs, campaign
// plans, history management, and config management.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigbench/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	// cfgFile is the --config override; empty means the default
	// ~/.rigbench/config.toml.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "rigbench",
		Short: "LLM inference benchmark controller",
		Long: `rigbench drives benchmark campaigns against a local runner daemon:
it starts runs, polls the daemon's progress, result, and telemetry
feeds, aggregates per-round statistics, and records finished runs.`,
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.rigbench/config.toml)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rigbench %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	})
}

// loadConfig resolves the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromPath(cfgFile)
	}
	return config.Load()
}
