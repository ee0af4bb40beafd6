// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigbench/internal/model"
)

// =============================================================================
// RUN COMMAND
// =============================================================================

var (
	runModel        string
	runEndpoint     string
	runAPIKey       string
	runPromptTokens int
	runMaxTokens    int
	runRounds       int
	runConcurrency  int
	runTimeoutSecs  int
	runMode         string
	runStepStart    int
	runStepEnd      int
	runStepSize     int
	runFresh        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark",
	Long: `Runs a benchmark against the configured inference endpoint.

In normal mode the run executes a fixed number of rounds at a fixed
concurrency. The step modes sweep one axis across a range, executing
one run per step:

  concurrency_step  sweeps the parallel request count
  input_step        sweeps the prompt size in tokens`,
	Example: `  # Three rounds at concurrency 4 with the configured defaults
  rigbench run --model qwen2.5:7b

  # Sweep concurrency 2..16 in steps of 2
  rigbench run --mode concurrency_step --step-start 2 --step-end 16 --step 2

  # Sweep prompt size against a remote endpoint
  rigbench run --mode input_step --step-start 256 --step-end 4096 --step 256 \
    --endpoint http://10.0.0.5:8000/v1/chat/completions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		run := cfg.RunConfiguration()
		if !runFresh {
			run = loadSessionSnapshot(run)
		}
		applyRunFlags(cmd, &run)

		cfgs, err := run.ExpandSteps()
		if err != nil {
			return err
		}

		fmt.Printf("Benchmarking %s at %s (%d run(s))\n", run.Model, run.Endpoint, len(cfgs))
		return executeCampaign(cfg, cfgs...)
	},
}

// applyRunFlags overlays explicitly set flags onto the run
// configuration. Only flags the user passed override the defaults and
// the restored session.
func applyRunFlags(cmd *cobra.Command, run *model.RunConfiguration) {
	if cmd.Flags().Changed("model") {
		run.Model = runModel
	}
	if cmd.Flags().Changed("endpoint") {
		run.Endpoint = runEndpoint
	}
	if cmd.Flags().Changed("api-key") {
		run.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("prompt-tokens") {
		run.PromptTokens = runPromptTokens
	}
	if cmd.Flags().Changed("max-tokens") {
		run.MaxTokens = runMaxTokens
	}
	if cmd.Flags().Changed("rounds") {
		run.Rounds = runRounds
	}
	if cmd.Flags().Changed("concurrency") {
		run.Concurrency = runConcurrency
	}
	if cmd.Flags().Changed("timeout") {
		run.Timeout = time.Duration(runTimeoutSecs) * time.Second
	}
	if cmd.Flags().Changed("mode") {
		run.Mode = model.RunMode(runMode)
	}
	if cmd.Flags().Changed("step-start") {
		run.Steps.Start = runStepStart
	}
	if cmd.Flags().Changed("step-end") {
		run.Steps.End = runStepEnd
	}
	if cmd.Flags().Changed("step") {
		run.Steps.Step = runStepSize
	}
}

func init() {
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "model identifier to benchmark")
	runCmd.Flags().StringVar(&runEndpoint, "endpoint", "", "inference endpoint URL")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "endpoint API key")
	runCmd.Flags().IntVar(&runPromptTokens, "prompt-tokens", 0, "target prompt size in tokens")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "max generated tokens per request")
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 0, "number of rounds")
	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 0, "parallel requests per round")
	runCmd.Flags().IntVar(&runTimeoutSecs, "timeout", 0, "per-request timeout in seconds")
	runCmd.Flags().StringVar(&runMode, "mode", "", "run mode: normal, concurrency_step, input_step")
	runCmd.Flags().IntVar(&runStepStart, "step-start", 0, "step range start")
	runCmd.Flags().IntVar(&runStepEnd, "step-end", 0, "step range end (inclusive)")
	runCmd.Flags().IntVar(&runStepSize, "step", 0, "step range increment")
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "ignore the saved session snapshot")

	rootCmd.AddCommand(runCmd)
}
