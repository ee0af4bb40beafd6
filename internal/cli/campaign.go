// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigbench/internal/plan"
)

// =============================================================================
// CAMPAIGN COMMAND
// =============================================================================

var campaignCmd = &cobra.Command{
	Use:   "campaign <plan.yaml>",
	Short: "Run a campaign plan",
	Long: `Runs the benchmark sequence described by a YAML plan file. Each run
entry inherits the configured defaults; set fields override them.

Example plan:

  name: nightly sweep
  runs:
    - model: qwen2.5:7b
      rounds: 3
      concurrency: 4
    - model: qwen2.5:7b
      mode: concurrency_step
      steps: {start: 2, end: 16, step: 2}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}

		cfgs, err := p.Configurations(cfg.RunConfiguration())
		if err != nil {
			return err
		}

		name := p.Name
		if name == "" {
			name = p.ID
		}
		fmt.Printf("Campaign %q: %d run(s)\n", name, len(cfgs))
		return executeCampaign(cfg, cfgs...)
	},
}

func init() {
	rootCmd.AddCommand(campaignCmd)
}
